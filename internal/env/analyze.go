package env

import "slices"

// Analysis is the result of comparing an env file against the keys its
// example requires. It performs no I/O.
type Analysis struct {
	// Required lists the example's keys in file order.
	Required []string
	// Missing lists required keys with no usable value that the registry
	// cannot fill. These need user input.
	Missing []string
	// Defaulted lists required keys with no usable value that the registry
	// can fill from a default or generator.
	Defaulted []string
}

// Complete reports whether nothing needs to be asked of the user.
func (a Analysis) Complete() bool {
	return len(a.Missing) == 0
}

// RequiredKeys returns the keys declared by an example file in order.
func RequiredKeys(example *File) []string {
	return example.Keys()
}

// Analyze classifies every required key that has no usable value in env.
func Analyze(required []string, env *File, reg *Registry) Analysis {
	a := Analysis{Required: slices.Clone(required)}
	for _, key := range required {
		if env.HasValue(key) {
			continue
		}
		if def, _, ok := reg.Lookup(key); ok && def.HasAutoValue() {
			a.Defaulted = append(a.Defaulted, key)
			continue
		}
		a.Missing = append(a.Missing, key)
	}
	return a
}

// MissingKeys returns the required keys that must be supplied by the user.
func MissingKeys(required []string, env *File, reg *Registry) []string {
	return Analyze(required, env, reg).Missing
}

// GroupByService groups keys by owning service, preserving the registry's
// service order. Unknown keys go to OtherService, listed last.
func GroupByService(keys []string, reg *Registry) []ServiceGroup {
	byName := make(map[string][]string)
	for _, key := range keys {
		name := reg.ServiceOf(key)
		byName[name] = append(byName[name], key)
	}

	var groups []ServiceGroup
	for _, svc := range reg.Services() {
		if ks, ok := byName[svc.Name]; ok {
			groups = append(groups, ServiceGroup{Service: svc, Keys: ks})
		}
	}
	if ks, ok := byName[OtherService]; ok {
		groups = append(groups, ServiceGroup{Service: ServiceDefinition{Name: OtherService}, Keys: ks})
	}
	return groups
}

// ServiceGroup is a service together with its keys that need values.
type ServiceGroup struct {
	Service ServiceDefinition
	Keys    []string
}

// AutoFill is one value written by ApplyDefaults.
type AutoFill struct {
	Key       string
	Generated bool
}

// ApplyDefaults fills every key in keys that has no value in env from the
// registry. A static default takes precedence over a generator. Keys that
// already have a non-empty value are never touched.
func ApplyDefaults(env *File, keys []string, reg *Registry) ([]AutoFill, error) {
	var filled []AutoFill
	for _, key := range keys {
		if env.HasValue(key) {
			continue
		}
		def, svc, ok := reg.Lookup(key)
		if !ok {
			continue
		}
		switch {
		case def.Default != "":
			env.Set(key, def.Default)
			filled = append(filled, AutoFill{Key: key})
		case def.Generator != nil:
			v, err := def.Generator.Generate()
			if err != nil {
				return filled, &KeyError{Key: key, Service: svc.Name, Err: err}
			}
			env.Set(key, v)
			filled = append(filled, AutoFill{Key: key, Generated: true})
		}
	}
	return filled, nil
}
