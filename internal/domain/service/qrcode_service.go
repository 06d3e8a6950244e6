package service

// QRCodeService renders enrollment payloads (otpauth URIs) as QR code images
// so authenticator apps can scan them.
type QRCodeService interface {
	// GeneratePNG renders the content as a PNG image.
	GeneratePNG(content string) ([]byte, error)

	// GenerateBase64 renders the content as a base64-encoded PNG suitable for
	// embedding in a JSON response.
	GenerateBase64(content string) (string, error)
}
