// Package pg provides PostgreSQL helpers built on the pgx/v5 driver:
// connection pooling with retry, goose migrations from an embedded file
// system and a ping for health checks.
//
//	var cfg pg.Config
//	if err := env.Parse(&cfg); err != nil {
//	    return err
//	}
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, chatlog.Migrations, "migrations", cfg, log); err != nil {
//	    return err
//	}
//
// Errors are joined with the package sentinels, so errors.Is works against
// both the sentinel and the underlying pgx error.
package pg
