package user

// User is a directory entry used for mention resolution and notification addressing.
type User struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	Role       string `json:"role" yaml:"role"`
	Department string `json:"department" yaml:"department"`
}
