package config

import "strings"

// A User is a user account on the target machine.
type User struct {
	Username   string   `json:"username" validate:"required"`
	FullName   string   `json:"fullName" validate:"required"`
	HomeDir    string   `json:"homeDir" validate:"required,startswith=/"`
	Shell      string   `json:"shell" validate:"omitempty,startswith=/"`
	ManageHome bool     `json:"manageHome"`
	Groups     []string `json:"groups" validate:"min=1,dive,required"`
}

// NewUser returns a normalized copy of u.
func NewUser(u User) User {
	u.Normalize()
	return u
}

// Normalize derives the missing names and paths:
//
//   - If neither name is set, FullName is set to DefaultFullName.
//   - An empty Username is derived from FullName: lower case, spaces replaced
//     with hyphens. An empty FullName is set to the Username.
//   - HomeDir defaults to /home/<username>, Shell to DefaultShell.
//   - The username is prepended to Groups unless it is already a member.
func (u *User) Normalize() {
	if u.Username == "" && u.FullName == "" {
		u.FullName = DefaultFullName
	}
	if u.Username == "" {
		u.Username = Username(u.FullName)
	}
	if u.FullName == "" {
		u.FullName = u.Username
	}
	if u.HomeDir == "" {
		u.HomeDir = "/home/" + u.Username
	}
	if u.Shell == "" {
		u.Shell = DefaultShell
	}
	u.Groups = withGroup(u.Groups, u.Username)
}

// Username derives a username from a full name.
func Username(fullName string) string {
	return strings.ToLower(strings.Replace(fullName, " ", "-", -1))
}

// withGroup returns a copy of groups with name as the first entry, unless
// name is already a member.
func withGroup(groups []string, name string) []string {
	for _, g := range groups {
		if g == name {
			return append([]string(nil), groups...)
		}
	}
	out := make([]string, 0, len(groups)+1)
	out = append(out, name)
	return append(out, groups...)
}
