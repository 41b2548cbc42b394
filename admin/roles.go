package admin

import (
	"fmt"
	"sort"
	"strings"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

// SuperAdmin holds every permission, whatever the table lists for it.
const SuperAdmin = "super_admin"

// Table maps roles to permission ids and permission ids to the dashboard paths they unlock.
type Table struct {
	Permissions map[string][]string `yaml:"permissions"`
	Roles       map[string][]string `yaml:"roles"`
}

// DefaultTable returns the dashboard's built-in role table. Callers may modify the result.
func DefaultTable() Table {
	return Table{
		Permissions: map[string][]string{
			"dashboard":   {"/"},
			"users":       {"/users"},
			"lotteries":   {"/lotteries", "/draws"},
			"group_buy":   {"/group-buy"},
			"orders":      {"/orders"},
			"deposits":    {"/deposits"},
			"withdrawals": {"/withdrawals"},
			"shipping":    {"/shipping", "/batches"},
			"commissions": {"/commissions", "/referrals"},
			"showoffs":    {"/showoffs"},
			"pickup":      {"/pickup"},
			"admins":      {"/admins"},
			"settings":    {"/settings"},
		},
		Roles: map[string][]string{
			SuperAdmin: nil,
			"admin": {"dashboard", "users", "lotteries", "group_buy", "orders", "deposits",
				"withdrawals", "shipping", "commissions", "showoffs", "pickup", "settings"},
			"operator": {"dashboard", "lotteries", "group_buy", "orders", "shipping", "showoffs", "pickup"},
			"finance":  {"dashboard", "deposits", "withdrawals", "commissions"},
			"support":  {"dashboard", "users", "orders", "pickup"},
		},
	}
}

func (t Table) validate() error {
	if _, ok := t.Roles[SuperAdmin]; !ok {
		return fmt.Errorf("admin: role table lacks %q", SuperAdmin)
	}
	for role, ids := range t.Roles {
		for _, id := range ids {
			if _, ok := t.Permissions[id]; !ok {
				return fmt.Errorf("admin: role %q grants unknown permission %q", role, id)
			}
		}
	}
	for id, paths := range t.Permissions {
		for _, p := range paths {
			if !strings.HasPrefix(p, "/") {
				return fmt.Errorf("admin: permission %q lists relative path %q", id, p)
			}
		}
	}
	return nil
}

// Grants returns the permission ids of role in sorted order, or nil for an unknown role.
func (t Table) Grants(role string) []string {
	ids, ok := t.Roles[role]
	if !ok {
		return nil
	}
	if role == SuperAdmin {
		ids = make([]string, 0, len(t.Permissions))
		for id := range t.Permissions {
			ids = append(ids, id)
		}
	} else {
		ids = append([]string(nil), ids...)
	}
	sort.Strings(ids)
	return ids
}

// Allows reports whether role may open path: some granted permission must list path itself or
// a parent of it. "/" only ever matches itself.
func (t Table) Allows(role, path string) bool {
	for _, id := range t.Grants(role) {
		for _, p := range t.Permissions[id] {
			if path == p || p != "/" && strings.HasPrefix(path, p+"/") {
				return true
			}
		}
	}
	return false
}
