package resolve

import "slices"

// resolveArgs walks a parameter declaration map and produces the validated
// argument bag. Parameters are processed in sorted name order so that error
// aggregation and first-writer-wins flattening are deterministic.
//
// Validation failures are data: they accumulate in the returned FieldError
// list and never stop resolution of sibling parameters, so a caller gets
// the complete error report in one pass. The error return carries only
// control flow that must unwind: a response-as-signal or an unexpected
// dependency handler error.
//
// The cache is threaded through every recursion level unchanged, so a
// dependency shared between two branches of the same tree still executes
// once.
func resolveArgs(params Params, c *Context, cache depCache) (Args, []FieldError, error) {
	args := make(Args, len(params))
	var errs []FieldError

	for _, name := range sortedKeys(params) {
		p := params[name]

		if p.location == LocationDepends {
			if err := resolveDependency(name, p.dependency, c, cache, args, &errs); err != nil {
				return nil, nil, err
			}
			continue
		}

		raw, synthetic := rawValue(name, p, c)
		if synthetic != nil {
			errs = append(errs, *synthetic)
			continue
		}

		if p.body == bodyText || p.body == bodyBinary || p.body == bodyStream {
			// Sentinel body kinds bypass validation entirely.
			args[name] = raw
			continue
		}

		if p.preprocess != nil && raw != nil {
			raw = p.preprocess(raw)
		}

		val, issues := p.validator.Validate(raw)
		if len(issues) > 0 {
			errs = append(errs, FieldError{Location: p.location, Name: p.wireName(name), Issues: issues})
			continue
		}
		args[name] = val
	}

	return args, errs, nil
}

// resolveDependency expands a Depends parameter: consult the cache, or
// recursively resolve the dependency's own parameters and run its handler.
// Sub-arguments flatten into the outer bag under first-writer-wins.
func resolveDependency(name string, d *Dependency, c *Context, cache depCache, args Args, errs *[]FieldError) error {
	if d.useCache {
		if entry, ok := cache[d]; ok {
			args[name] = entry.value
			mergeAbsent(args, entry.args)
			return nil
		}
	}

	subArgs, subErrs, err := resolveArgs(d.params, c, cache)
	if err != nil {
		return err
	}
	if len(subErrs) > 0 {
		*errs = append(*errs, subErrs...)
		return nil
	}

	val, err := d.handle(c.withArgs(subArgs))
	if err != nil {
		return err
	}

	args[name] = val
	mergeAbsent(args, subArgs)
	if d.useCache {
		cache[d] = depEntry{value: val, args: subArgs}
	}
	return nil
}

// rawValue looks up a parameter's raw input. It returns nil for absent
// values; validators decide what absence means. The second return is a
// synthetic error for body-parse failures.
func rawValue(name string, p *Param, c *Context) (any, *FieldError) {
	wire := p.wireName(name)

	switch p.location {
	case LocationPath:
		if v, ok := c.pathParams[wire]; ok {
			return v, nil
		}
		return nil, nil

	case LocationQuery:
		vals := c.req.Query()[wire]
		if len(vals) == 0 {
			return nil, nil
		}
		if isMultiValued(p.validator) {
			return vals, nil
		}
		return vals[0], nil

	case LocationHeader:
		vals := c.req.Header().Values(wire)
		if len(vals) == 0 {
			return nil, nil
		}
		if isMultiValued(p.validator) {
			return vals, nil
		}
		return vals[0], nil

	case LocationCookie:
		if v, ok := c.req.Cookie(wire); ok {
			return v, nil
		}
		return nil, nil

	case LocationBody:
		return rawBody(wire, p, c)
	}

	return nil, nil
}

func rawBody(wire string, p *Param, c *Context) (any, *FieldError) {
	switch p.body {
	case bodyText:
		s, err := c.req.TextBody()
		if err != nil {
			return nil, bodyReadError(wire, err)
		}
		return s, nil
	case bodyBinary:
		data, err := c.req.BytesBody()
		if err != nil {
			return nil, bodyReadError(wire, err)
		}
		return data, nil
	case bodyStream:
		return c.req.StreamBody(), nil
	default:
		v, err := c.req.JSONBody()
		if err != nil {
			return nil, &FieldError{
				Location: LocationBody,
				Name:     wire,
				Issues:   []Issue{{Code: IssueInvalidJSON, Message: err.Error()}},
			}
		}
		return v, nil
	}
}

func bodyReadError(wire string, err error) *FieldError {
	return &FieldError{
		Location: LocationBody,
		Name:     wire,
		Issues:   []Issue{{Code: IssueInvalidJSON, Message: "read body: " + err.Error()}},
	}
}

// mergeAbsent copies entries from src into dst for names dst does not
// already hold. First writer wins: an earlier branch's value is never
// overwritten by a later duplicate.
func mergeAbsent(dst, src Args) {
	for name, val := range src {
		if _, ok := dst[name]; !ok {
			dst[name] = val
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
