package user

import "fmt"

// Directory is an immutable lookup over a user list.
type Directory struct {
	users  []User
	byID   map[string]int
	byName map[string]int
}

// NewDirectory indexes users by id and by exact name. When two users share a
// name the first one keeps it.
func NewDirectory(users []User) (*Directory, error) {
	d := &Directory{
		users:  make([]User, 0, len(users)),
		byID:   make(map[string]int, len(users)),
		byName: make(map[string]int, len(users)),
	}
	for _, u := range users {
		if u.ID == "" {
			return nil, fmt.Errorf("%w: empty id", ErrInvalidInput)
		}
		if _, ok := d.byID[u.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateUser, u.ID)
		}
		d.byID[u.ID] = len(d.users)
		if _, ok := d.byName[u.Name]; !ok && u.Name != "" {
			d.byName[u.Name] = len(d.users)
		}
		d.users = append(d.users, u)
	}
	return d, nil
}

// ByID returns the user with the given id.
func (d *Directory) ByID(id string) (User, bool) {
	if d == nil {
		return User{}, false
	}
	i, ok := d.byID[id]
	if !ok {
		return User{}, false
	}
	return d.users[i], true
}

// ByName returns the user whose name equals name exactly.
func (d *Directory) ByName(name string) (User, bool) {
	if d == nil {
		return User{}, false
	}
	i, ok := d.byName[name]
	if !ok {
		return User{}, false
	}
	return d.users[i], true
}

// All returns a copy of the directory in insertion order.
func (d *Directory) All() []User {
	if d == nil {
		return nil
	}
	out := make([]User, len(d.users))
	copy(out, d.users)
	return out
}

// Len returns the number of users.
func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.users)
}
