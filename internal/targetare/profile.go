package targetare

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// CompanyProfile is the registry's identity card for one company. The API
// serves a flat object whose exact key set varies by data coverage; the
// fields below are decoded into place and every other key is kept verbatim
// in Extra so nothing the registry reports is dropped.
type CompanyProfile struct {
	Name               string `json:"name,omitempty"`
	CUI                string `json:"cui,omitempty"`
	RegistrationNumber string `json:"registration_number,omitempty"`
	RegistrationDate   string `json:"registration_date,omitempty"`
	Status             string `json:"status,omitempty"`
	Address            string `json:"address,omitempty"`
	County             string `json:"county,omitempty"`
	City               string `json:"city,omitempty"`
	CAENCode           string `json:"caen_code,omitempty"`
	CAENDescription    string `json:"caen_description,omitempty"`

	Extra map[string]any `json:"-"`
}

// profileKeys maps wire keys, including the aliases the API uses in list
// responses, onto profile field setters.
var profileKeys = map[string]func(p *CompanyProfile, v string){
	"name":                func(p *CompanyProfile, v string) { p.Name = v },
	"company_name":        func(p *CompanyProfile, v string) { p.Name = v },
	"cui":                 func(p *CompanyProfile, v string) { p.CUI = v },
	"tax_id":              func(p *CompanyProfile, v string) { p.CUI = v },
	"registration_number": func(p *CompanyProfile, v string) { p.RegistrationNumber = v },
	"registration_date":   func(p *CompanyProfile, v string) { p.RegistrationDate = v },
	"status":              func(p *CompanyProfile, v string) { p.Status = v },
	"address":             func(p *CompanyProfile, v string) { p.Address = v },
	"county":              func(p *CompanyProfile, v string) { p.County = v },
	"city":                func(p *CompanyProfile, v string) { p.City = v },
	"caen_code":           func(p *CompanyProfile, v string) { p.CAENCode = v },
	"caen_description":    func(p *CompanyProfile, v string) { p.CAENDescription = v },
}

// UnmarshalJSON fills the typed fields from their wire keys and collects
// every remaining key into Extra untouched.
func (p *CompanyProfile) UnmarshalJSON(data []byte) error {
	raw := map[string]any{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = CompanyProfile{}
	for key, value := range raw {
		set, known := profileKeys[key]
		if !known {
			if p.Extra == nil {
				p.Extra = map[string]any{}
			}
			p.Extra[key] = value
			continue
		}
		if s, ok := scalarString(value); ok && s != "" {
			set(p, s)
		}
	}
	return nil
}

// MarshalJSON flattens Extra back alongside the typed fields so envelopes
// carry the same shape the registry answered with.
func (p CompanyProfile) MarshalJSON() ([]byte, error) {
	merged := make(map[string]any, len(p.Extra)+10)
	for key, value := range p.Extra {
		merged[key] = value
	}
	setIf := func(key, value string) {
		if value != "" {
			merged[key] = value
		}
	}
	setIf("name", p.Name)
	setIf("cui", p.CUI)
	setIf("registration_number", p.RegistrationNumber)
	setIf("registration_date", p.RegistrationDate)
	setIf("status", p.Status)
	setIf("address", p.Address)
	setIf("county", p.County)
	setIf("city", p.City)
	setIf("caen_code", p.CAENCode)
	setIf("caen_description", p.CAENDescription)
	return json.Marshal(merged)
}

// scalarString renders a decoded JSON scalar as a string. The registry is
// not consistent about types; CUIs in particular show up as numbers.
func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

// decodeProfiles normalizes a company list payload. Registration date
// queries answer with a bare array; some deployments wrap it in an object
// under "companies", "results", or "data"; a single object is treated as a
// one-element list.
func decodeProfiles(body []byte) ([]CompanyProfile, error) {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var profiles []CompanyProfile
		if err := json.Unmarshal(trimmed, &profiles); err != nil {
			return nil, err
		}
		return profiles, nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &wrapper); err != nil {
		return nil, err
	}
	for _, key := range []string{"companies", "results", "data"} {
		inner, ok := wrapper[key]
		if !ok {
			continue
		}
		innerTrimmed := bytes.TrimLeft(inner, " \t\r\n")
		if len(innerTrimmed) == 0 || innerTrimmed[0] != '[' {
			continue
		}
		var profiles []CompanyProfile
		if err := json.Unmarshal(innerTrimmed, &profiles); err != nil {
			return nil, err
		}
		return profiles, nil
	}

	var single CompanyProfile
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return nil, err
	}
	return []CompanyProfile{single}, nil
}
