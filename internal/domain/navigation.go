package domain

// Navigation targets for the intake pages.
// NextPageByType maps a consultation type to the page shown after an
// in-service search; unknown or empty types use DefaultNextPage.
type NavigationConfig struct {
	NextPageByType     map[string]string
	DefaultNextPage    string
	OutsideServicePage string
	Company            Company
}

func DefaultNavigationConfig() NavigationConfig {
	return NavigationConfig{
		NextPageByType: map[string]string{
			"boiler":  "installation_boiler.html",
			"gas":     "installation_gas.html",
			"dryer":   "installation_dryer.html",
			"elec":    "installation_elec.html",
			"builtin": "installation_builtin.html",
			"sash":    "installation_sash.html",
		},
		DefaultNextPage:    "installation_gas2.html",
		OutsideServicePage: "connection.html",
		Company: Company{
			Name:    "선두에너지",
			Address: "인천 서구 청마로34번길 32-9",
		},
	}
}

// NextPage returns the next-step page for a consultation type.
func (c NavigationConfig) NextPage(consultType string) string {
	if p, ok := c.NextPageByType[consultType]; ok && p != "" {
		return p
	}
	return c.DefaultNextPage
}
