package dto

// Provenance is where a payload came from and how fresh it is, exactly as
// the backend reported it. Either field may be empty when the backend omits it.
type Provenance struct {
	Source      string
	LastUpdated string
}
