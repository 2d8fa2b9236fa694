package domain

// Response is the status code and UTF-8 body of a completed exchange.
type Response struct {
	Status int
	Body   string
}

// IsSuccess reports whether the status is 2xx.
func (r Response) IsSuccess() bool { return r.Status >= 200 && r.Status < 300 }
