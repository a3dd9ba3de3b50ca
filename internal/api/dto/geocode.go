package dto

type GeocodeResponse struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	AddressName string  `json:"address_name"`
}
