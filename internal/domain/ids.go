package domain

// StoreID implementations give each collection entity the identity its store
// tracks selection by. Roles are addressed by name; the backend's numeric id
// is optional on older deployments.

func (r Role) StoreID() string               { return r.Name }
func (s GraphSchema) StoreID() string        { return s.ID }
func (d Dataset) StoreID() string            { return d.ID }
func (u AdminUser) StoreID() string          { return u.Username }
func (p TransformationPlan) StoreID() string { return p.ID }
