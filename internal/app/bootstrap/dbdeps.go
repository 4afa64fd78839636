// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/geogroups/internal/app/system/auditlog"
	"github.com/dalemusser/geogroups/internal/app/system/mailer"
	"github.com/dalemusser/geogroups/internal/app/system/ratelimit"
	"github.com/dalemusser/geogroups/internal/app/system/search"
	"github.com/dalemusser/geogroups/internal/app/system/tasks"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
//
// WAFFLE passes DBDeps by value to every hook, so the services Startup
// builds hang off a pointer that ConnectDB allocates.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	Services *Services
}

// Services are built in Startup and released in Shutdown.
type Services struct {
	Index   *search.GroupIndex
	Mailer  *mailer.Mailer
	Audit   *auditlog.Logger
	Limiter *ratelimit.LoginLimiter
	Tasks   *tasks.Runner
}
