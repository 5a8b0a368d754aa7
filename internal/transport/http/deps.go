package http

import (
	"github.com/weedscan-auth/internal/application/linking"
	"github.com/weedscan-auth/internal/infrastructure/smtp"
)

// Deps holds the infrastructure dependencies the router wires into the
// linking service. The fields are the service's own collaborator
// interfaces, so tests can hand in fakes without touching AWS or SMTP.
type Deps struct {
	Provider linking.IdentityProvider
	Store    linking.VerificationStore
	Escrow   linking.CredentialEscrow
	Mailer   smtp.Mailer
}
