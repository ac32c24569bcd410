package user

import (
	"encoding/json"
	"strings"
)

// Role is the canonical role used everywhere past the API boundary.
type Role string

const (
	RoleGuest    Role = "GUEST"
	RoleCustomer Role = "CUSTOMER"
	RoleAdmin    Role = "ADMIN"
)

func (r Role) IsAdmin() bool { return r == RoleAdmin }

func (r Role) rank() int {
	switch r {
	case RoleAdmin:
		return 2
	case RoleCustomer:
		return 1
	default:
		return 0
	}
}

// ParseRole maps a single role label to a Role. Spring-style "ROLE_" prefixes
// and letter case are ignored. Unknown non-empty labels are treated as customers.
func ParseRole(label string) Role {
	l := strings.ToUpper(strings.TrimSpace(label))
	l = strings.TrimPrefix(l, "ROLE_")
	switch l {
	case "":
		return RoleGuest
	case "GUEST", "ANONYMOUS":
		return RoleGuest
	case "ADMIN", "ADMINISTRATOR", "SUPER_ADMIN", "SUPERADMIN":
		return RoleAdmin
	default:
		return RoleCustomer
	}
}

// NormalizeRole inspects a user (or token claims) object and returns the most
// privileged role found in any of the shapes the backend has used over time:
//
//	{"role": "ADMIN"}
//	{"role": {"name": "ADMIN"}}
//	{"roles": ["ADMIN", "USER"]}
//	{"roles": [{"name": "ROLE_ADMIN"}]}
//	{"authorities": [{"authority": "ROLE_ADMIN"}]}
//	{"isAdmin": true}
func NormalizeRole(raw []byte) Role {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return RoleGuest
	}

	best := RoleGuest
	consider := func(r Role) {
		if r.rank() > best.rank() {
			best = r
		}
	}

	for _, key := range []string{"role", "roles", "authorities"} {
		if v, ok := obj[key]; ok {
			for _, label := range roleLabels(v) {
				consider(ParseRole(label))
			}
		}
	}

	for _, key := range []string{"isAdmin", "admin"} {
		var flag bool
		if v, ok := obj[key]; ok && json.Unmarshal(v, &flag) == nil && flag {
			consider(RoleAdmin)
		}
	}

	return best
}

// roleLabels flattens a string, an object or an array of either into labels.
func roleLabels(v json.RawMessage) []string {
	var s string
	if json.Unmarshal(v, &s) == nil {
		return []string{s}
	}

	var o map[string]any
	if json.Unmarshal(v, &o) == nil {
		return objectLabel(o)
	}

	var arr []json.RawMessage
	if json.Unmarshal(v, &arr) != nil {
		return nil
	}
	var out []string
	for _, item := range arr {
		out = append(out, roleLabels(item)...)
	}
	return out
}

func objectLabel(o map[string]any) []string {
	for _, k := range []string{"name", "authority", "role", "code"} {
		if s, ok := o[k].(string); ok {
			return []string{s}
		}
	}
	return nil
}
