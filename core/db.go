package core

// DBOrdering is a repository-agnostic sort directive; the user query
// endpoint binds it from the "ordering" query param.
type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}
