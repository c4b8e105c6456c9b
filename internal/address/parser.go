package address

import "strings"

// ParseOne maps a provider suggestion to an Address.
//
// AddressComplete describes a place as "street, city, province postal".
// When the description has exactly those three comma-separated parts they are
// split out; any other shape yields a degenerate Address that carries only the
// provider label in Street and DisplayText. A last part with no space, such as
// "YT", fills both Province and PostalCode. ParseOne never fails.
func ParseOne(s RawSuggestion) Address {
	parts := strings.Split(s.Description, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	if len(parts) != 3 {
		return Address{
			Street:      s.Text,
			Country:     DefaultCountry,
			DisplayText: s.Text,
		}
	}

	// Without a space the whole segment is both province and postal code.
	province, postal, found := strings.Cut(parts[2], " ")
	if !found {
		postal = province
	}

	return Address{
		Street:      parts[0],
		City:        parts[1],
		Province:    province,
		PostalCode:  strings.TrimSpace(postal),
		Country:     DefaultCountry,
		DisplayText: s.Text,
	}
}

// ParseAll maps ParseOne over items, preserving order. It never returns nil.
func ParseAll(items []RawSuggestion) []Address {
	out := make([]Address, 0, len(items))
	for _, item := range items {
		out = append(out, ParseOne(item))
	}
	return out
}
