// Package extension mounts Folio into a Forge application.
//
// The extension:
//   - Builds the Folio instance on a grove-backed store
//   - Runs database migrations on Init
//   - Mounts the admin API routes with OpenAPI metadata under a configurable base path
//   - Starts the webhook delivery engine on application start
//   - Drains in-flight deliveries and closes the store on shutdown
//   - Reports health via the store ping
//
// Usage:
//
//	ext := extension.New(
//	    extension.WithPostgres(db),
//	    extension.WithBasePath("/cms"),
//	)
//	if err := ext.Init(ctx); err != nil {
//	    return err
//	}
//	if err := ext.RegisterRoutes(app.Router(), app.Logger()); err != nil {
//	    return err
//	}
//	defer ext.Stop(ctx)
//	return ext.Start(ctx)
package extension
