package permissions

import "sort"

// Option is a single permission row in a categorized grouping, flagged with
// whether the role under inspection currently holds it.
type Option struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Action   string `json:"action"`
	Selected bool   `json:"selected"`
}

// Categorize groups every registered permission by its resource segment,
// marking the ones present in held. ids maps permission names to their
// database identifiers; unknown names fall back to the name itself.
// Stored names that no longer parse as action:resource are skipped.
func Categorize(held map[string]struct{}, ids map[string]string) map[string][]Option {
	out := make(map[string][]Option)

	for name, def := range GetAll() {
		action, resource, err := ParseName(name)
		if err != nil {
			continue
		}

		id := name
		if mapped, ok := ids[name]; ok && mapped != "" {
			id = mapped
		}

		_, selected := held[name]
		out[resource] = append(out[resource], Option{
			ID:       id,
			Name:     def.Name,
			Action:   action,
			Selected: selected,
		})
	}

	for resource := range out {
		opts := out[resource]
		sort.Slice(opts, func(i, j int) bool { return opts[i].Name < opts[j].Name })
		out[resource] = opts
	}

	return out
}
