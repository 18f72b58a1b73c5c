package secrets

// Secret is a stored secret. Values are write-only and never returned.
type Secret struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
}

// UpsertSecret is a name and value to store.
type UpsertSecret struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Pagination carries the cursors around a page of secrets.
type Pagination struct {
	Next  string `json:"next,omitempty"`
	Prev  string `json:"prev,omitempty"`
	Total int    `json:"total"`
}

type SecretsList struct {
	Items      []Secret   `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// ListOptions selects a page of secrets. Zero values are omitted.
type ListOptions struct {
	Next     string
	Prev     string
	PageSize int
}
