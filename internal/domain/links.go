package domain

import (
	"net/url"
	"strings"
)

const naverDirectionsBase = "https://map.naver.com/v5/directions/"

var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EncodeComponent percent-encodes s the way browsers encode a URI component:
// spaces become %20 and !'()* stay literal.
func EncodeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}

// Display names inside a directions path cannot carry commas.
func safeName(s string) string {
	return EncodeComponent(strings.TrimSpace(strings.ReplaceAll(s, ",", " ")))
}

// DirectionsURL builds a Naver Map driving route from the company to the customer.
func DirectionsURL(from CompanyCoords, to GeocodeResult) string {
	return naverDirectionsBase +
		from.String() + "," + safeName(from.Name) + "/" +
		to.String() + "," + safeName(to.Label) + "/-/car"
}

// InServiceURL is the next-step page after an in-service search.
func (c NavigationConfig) InServiceURL(query, consultType string) string {
	return c.NextPage(consultType) + "?q=" + EncodeComponent(query) +
		"&type=" + EncodeComponent(consultType) + "&inService=1"
}

// OutsideURL is the out-of-service landing page.
func (c NavigationConfig) OutsideURL(query, consultType string) string {
	return c.OutsideServicePage + "?q=" + EncodeComponent(query) +
		"&type=" + EncodeComponent(consultType) + "&inService=0"
}

// SkipURL is the next-step page reached without a map search.
// The q parameter is omitted when query is empty.
func (c NavigationConfig) SkipURL(query, consultType string) string {
	page := c.NextPage(consultType)
	if query == "" {
		return page + "?skipMap=1&type=" + EncodeComponent(consultType)
	}
	return page + "?q=" + EncodeComponent(query) + "&skipMap=1&type=" + EncodeComponent(consultType)
}
