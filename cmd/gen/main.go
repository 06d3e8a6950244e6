package main

import (
	"jobdeck/internal/infra/persistence/model"

	"gorm.io/gen"
)

func main() {
	models := []any{
		model.OrganizationModel{},
		model.IdentityModel{},
		model.CredentialModel{},
		model.SessionModel{},
		model.BreakGlassTokenModel{},
		model.IdempotencyRecordModel{},
		model.MfaSecretModel{},
		model.AuditEventModel{},
		model.LeadModel{},
	}

	gen := gen.NewGenerator(gen.Config{
		OutPath: "./internal/infra/persistence/postgres/query",
	})

	gen.ApplyBasic(models...)

	gen.Execute()
}
