package domain

// Repository represents the git repository being observed.
type Repository struct {
	Host      string
	Owner     string
	Name      string
	RemoteURL string
}

// ProjectPath returns the namespaced project path, e.g. "group/sub/project".
func (r Repository) ProjectPath() string {
	if r.Owner == "" {
		return r.Name
	}
	return r.Owner + "/" + r.Name
}

// Commit is one entry of the commit list.
type Commit struct {
	SHA     string
	Subject string
	Author  string
}

// ShortSHA returns the abbreviated hash shown in the commit list.
func (c Commit) ShortSHA() string {
	if len(c.SHA) > 7 {
		return c.SHA[:7]
	}
	return c.SHA
}
