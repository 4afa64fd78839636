// internal/app/features/groups/handler.go
package groups

import (
	uierrors "github.com/dalemusser/geogroups/internal/app/features/errors"
	auditstore "github.com/dalemusser/geogroups/internal/app/store/audit"
	groupstore "github.com/dalemusser/geogroups/internal/app/store/groups"
	invitationstore "github.com/dalemusser/geogroups/internal/app/store/invitations"
	membershipstore "github.com/dalemusser/geogroups/internal/app/store/memberships"
	resourcestore "github.com/dalemusser/geogroups/internal/app/store/resources"
	userstore "github.com/dalemusser/geogroups/internal/app/store/users"
	"github.com/dalemusser/geogroups/internal/app/system/auditlog"
	"github.com/dalemusser/geogroups/internal/app/system/mailer"
	"github.com/dalemusser/geogroups/internal/app/system/paging"
	"github.com/dalemusser/geogroups/internal/app/system/search"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the groups feature.
// It holds references to the Mongo database, the logger and the optional
// collaborators (search index, mailer, audit log) so that the list,
// detail, membership and invitation handlers share the same core
// dependencies.
//
// Index, Mailer and Audit may be left nil: the list then browses the
// database only, invitations are stored without an e-mail, and no audit
// events are written.
type Handler struct {
	DB     *mongo.Database
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger

	Index    *search.GroupIndex
	Mailer   *mailer.Mailer
	Audit    *auditlog.Logger
	BaseURL  string // absolute origin for links in e-mails, e.g. https://geo.example.org
	PageSize int

	groups      *groupstore.Store
	members     *membershipstore.Store
	invitations *invitationstore.Store
	users       *userstore.Store
	resources   *resourcestore.Store
	activity    *auditstore.Store
}

// NewHandler constructs a new groups Handler. It is typically called
// from the bootstrap BuildHandler function, where the application's
// DB and logger are already initialized.
func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		ErrLog:   errLog,
		Log:      logger,
		PageSize: paging.PageSize,

		groups:      groupstore.New(db),
		members:     membershipstore.New(db),
		invitations: invitationstore.New(db),
		users:       userstore.New(db),
		resources:   resourcestore.New(db),
		activity:    auditstore.New(db),
	}
}
