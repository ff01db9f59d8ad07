package store

import (
	"context"
	"fmt"
	"time"

	"github.com/BartekS5/legacysync/pkg/logger"
	"github.com/BartekS5/legacysync/pkg/models"
)

// DefaultEnvironments are the four CICS environments every installation has.
func DefaultEnvironments(now time.Time) []models.Environment {
	port := 1433
	env := func(name, desc string, typ models.EnvironmentType, region, server string) models.Environment {
		p := port
		return models.Environment{
			Name: name, Description: desc, Type: typ, Server: server, Port: &p,
			CICSRegion: region, Active: true, CreatedAt: now, CreatedBy: models.ActorSystem,
		}
	}
	return []models.Environment{
		env("Desenvolvimento", "Ambiente de desenvolvimento CICS", models.EnvDevelopment, "CICSDV01", "CICS-DEV"),
		env("Teste", "Ambiente de teste CICS", models.EnvTest, "CICSTS01", "CICS-TST"),
		env("Homologação", "Ambiente de homologação CICS", models.EnvStaging, "CICSHM01", "CICS-HML"),
		env("Produção", "Ambiente de produção CICS", models.EnvProduction, "CICSPR01", "CICS-PRD"),
	}
}

// DefaultAdmin is the administrator account created with an empty store.
func DefaultAdmin(now time.Time, emailDomain string) models.User {
	return models.User{
		Login: "admin", Name: "Administrador do Sistema", Email: "admin@" + emailDomain,
		Area: "TI", Title: "Administrador", IsAdmin: true, CanApprove: true, Active: true,
		CreatedAt: now, CreatedBy: models.ActorSystem,
	}
}

// SeedDefaults inserts the default environments when none exist and the
// admin user when no user exists. It is safe to call on every start.
func SeedDefaults(ctx context.Context, c Catalog, emailDomain string) error {
	now := time.Now()

	envs, err := c.Environments().Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count environments: %w", err)
	}
	if envs == 0 {
		for _, e := range DefaultEnvironments(now) {
			e := e
			if err := c.Environments().Add(ctx, &e); err != nil {
				return fmt.Errorf("failed to seed environment %s: %w", e.Name, err)
			}
		}
		logger.Infof("Seeded %d default environments", len(DefaultEnvironments(now)))
	}

	users, err := c.Users().Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if users == 0 {
		admin := DefaultAdmin(now, emailDomain)
		if err := c.Users().Add(ctx, &admin); err != nil {
			return fmt.Errorf("failed to seed admin user: %w", err)
		}
		logger.Infof("Seeded admin user %s", admin.Email)
	}
	return nil
}
