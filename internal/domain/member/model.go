package member

// Member is a team member. Tasks reference members by display name
// only; renaming or deleting a member never touches task assignment.
type Member struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	Color string `json:"color"`
}
