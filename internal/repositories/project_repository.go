package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"taskdesk/internal/models"
)

// ProjectRepository answers the project-ownership questions the task
// engine asks. Project CRUD itself lives outside this service.
type ProjectRepository interface {
	Create(ctx context.Context, p *models.Project) error
	FindInOrganization(ctx context.Context, projectID, organizationID int64) (*models.Project, error)
}

type projectRepository struct {
	db *sqlx.DB
}

func NewProjectRepository(db *sqlx.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(ctx context.Context, p *models.Project) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	q := r.db.Rebind(`INSERT INTO projects (organization_id, name, created_at) VALUES (?, ?, ?) RETURNING id`)
	return r.db.QueryRowxContext(ctx, q, p.OrganizationID, p.Name, p.CreatedAt).Scan(&p.ID)
}

// FindInOrganization returns ErrNotFound when the project does not exist or
// belongs to another organization.
func (r *projectRepository) FindInOrganization(ctx context.Context, projectID, organizationID int64) (*models.Project, error) {
	var p models.Project
	q := r.db.Rebind(`SELECT id, organization_id, name, created_at FROM projects WHERE id = ? AND organization_id = ?`)
	if err := r.db.GetContext(ctx, &p, q, projectID, organizationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
