package dedup

// ErrInvalidJobReference indicates a candidate job reference too empty to
// check: no URL and an incomplete company/title pair.
type ErrInvalidJobReference struct{}

func (e *ErrInvalidJobReference) Error() string {
	return "job reference must include a url, or both company_name and job_title"
}
