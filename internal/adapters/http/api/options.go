package api

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithQRBaseURL sets the join URL encoded into invite QR codes.
func WithQRBaseURL(url string) Option {
	return func(s *Server) {
		if url != "" {
			s.inviteHandler.baseURL = url
		}
	}
}
