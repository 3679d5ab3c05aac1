package queueapi

import "net/url"

// Param is one query parameter change. An empty value clears the parameter.
type Param struct {
	Key   string
	Value string
}

// Set builds a Param.
func Set(key, value string) Param {
	return Param{Key: key, Value: value}
}

// poolDefining marks the params that change which claims are in the pool.
// Touching one of them invalidates both the anchor and the page position.
var poolDefining = map[string]bool{
	paramLifecycle: true,
	paramBranch:    true,
	paramAssignee:  true,
	paramSearch:    true,
}

// BuildQueueURL applies changes to the current query state and returns the
// canonical next-state query, enforcing the reset rules the console relies
// on for consistent pagination:
//
//   - changing or clearing a pool-defining param (lifecycle, branch,
//     assignee, search) drops poolAnchor and page;
//   - changing priority keeps poolAnchor but resets page;
//   - an explicit page change in the same call survives any page reset;
//   - setting a param to its current value resets nothing.
func BuildQueueURL(current url.Values, changes ...Param) url.Values {
	out := make(url.Values, len(current))
	for k, vs := range current {
		out[k] = append([]string(nil), vs...)
	}

	var resetAnchor, resetPage, pageSet bool

	for _, p := range changes {
		changed := out.Get(p.Key) != p.Value

		if p.Value == "" {
			out.Del(p.Key)
		} else {
			out.Set(p.Key, p.Value)
		}

		switch {
		case p.Key == paramPage:
			pageSet = true
		case p.Key == paramAnchor:
			// explicit anchor writes pass through untouched
		case poolDefining[p.Key] && changed:
			resetAnchor = true
			resetPage = true
		case p.Key == paramPriority && changed:
			resetPage = true
		}
	}

	if resetAnchor {
		out.Del(paramAnchor)
	}
	if resetPage && !pageSet {
		out.Del(paramPage)
	}
	return out
}
