// README: User accounts and the current-user profile.
package users

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
)

var (
	ErrNotFound = errors.New("user not found")
	ErrInvalid  = errors.New("invalid user")
)

// Draft is the caller-supplied part of a user.
type Draft struct {
	Name        string         `json:"name"`
	Email       string         `json:"email"`
	Preferences map[string]any `json:"preferences"`
}

type User struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Email       string         `json:"email"`
	Preferences map[string]any `json:"preferences"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Profile is the single profile served without authentication.
type Profile struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Email       string         `json:"email"`
	Preferences map[string]any `json:"preferences"`
}

func defaultProfile() Profile {
	return Profile{
		ID:    "user_1",
		Name:  "John Doe",
		Email: "john@example.com",
		Preferences: map[string]any{
			"theme":    "dark",
			"language": "en",
			"currency": "USD",
		},
	}
}

func (d Draft) validate() (Draft, error) {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return d, fmt.Errorf("%w: name is required", ErrInvalid)
	}
	email, err := normalizeEmail(d.Email)
	if err != nil {
		return d, err
	}
	d.Email = email
	if d.Preferences == nil {
		d.Preferences = map[string]any{}
	}
	return d, nil
}

func normalizeEmail(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: email is required", ErrInvalid)
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return "", fmt.Errorf("%w: email %q is not a valid address", ErrInvalid, s)
	}
	return strings.ToLower(s), nil
}

// apply merges a partial update into p. Known keys are type-checked,
// preferences are merged key by key and unknown keys are ignored.
func (p Profile) apply(update map[string]any) (Profile, error) {
	out := p
	out.Preferences = make(map[string]any, len(p.Preferences))
	for k, v := range p.Preferences {
		out.Preferences[k] = v
	}

	if v, ok := update["name"]; ok {
		name, isString := v.(string)
		if !isString || strings.TrimSpace(name) == "" {
			return p, fmt.Errorf("%w: name must be a non-empty string", ErrInvalid)
		}
		out.Name = strings.TrimSpace(name)
	}
	if v, ok := update["email"]; ok {
		raw, isString := v.(string)
		if !isString {
			return p, fmt.Errorf("%w: email must be a string", ErrInvalid)
		}
		email, err := normalizeEmail(raw)
		if err != nil {
			return p, err
		}
		out.Email = email
	}
	if v, ok := update["preferences"]; ok {
		prefs, isObject := v.(map[string]any)
		if !isObject {
			return p, fmt.Errorf("%w: preferences must be an object", ErrInvalid)
		}
		for k, pv := range prefs {
			if pv == nil {
				delete(out.Preferences, k)
				continue
			}
			out.Preferences[k] = pv
		}
	}
	return out, nil
}
