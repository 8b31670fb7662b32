package activity

// ListOptions provides filtering options for listing activity.
type ListOptions struct {
	ProjectID string
	AccountID string
	Type      *Type
	Limit     int
	Offset    int
}
