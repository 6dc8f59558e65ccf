package intake

// Validator accepts or rejects candidate media files before any network call.
type Validator interface {
	Accept(c Candidate) (MediaFile, error)
	Accepts(name string) bool
	Extensions() []string
}
