// Package repository provides the data access layer over the shared pgx
// pool. Repositories are thin structs reading database.DB so tests can swap
// in a pgxmock pool.
package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/database"
	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/models"
	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/workflow"
)

// FlowRepository loads flow definitions together with their screens, fields,
// options, and branch grants. Conditional rules are parsed once here so the
// resolver never re-splits rule strings per evaluation.
type FlowRepository struct{}

// NewFlowRepository creates a FlowRepository.
func NewFlowRepository() *FlowRepository {
	return &FlowRepository{}
}

// LoadFlowWithScreens returns the fully hydrated flow definition needed for
// visibility resolution, validation, and approval routing.
func (r *FlowRepository) LoadFlowWithScreens(ctx context.Context, flowID string) (*models.FlowDefinition, error) {
	flow := &models.FlowDefinition{}
	err := database.DB.QueryRow(ctx, `
        SELECT id, name, description, is_active, created_at, updated_at
        FROM flow_definitions
        WHERE id = $1
    `, flowID).Scan(&flow.ID, &flow.Name, &flow.Description, &flow.IsActive, &flow.CreatedAt, &flow.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &workflow.NotFoundError{Kind: "flow", ID: flowID}
		}
		return nil, err
	}

	if err := r.loadScreens(ctx, flow); err != nil {
		return nil, err
	}
	if err := r.loadFields(ctx, flow); err != nil {
		return nil, err
	}
	if err := r.loadBranchAssignments(ctx, flow); err != nil {
		return nil, err
	}
	return flow, nil
}

// loadScreens hydrates the ordered tabs and their screen definitions.
// tab_order is dense and unique per flow, so slice index equals tab index.
func (r *FlowRepository) loadScreens(ctx context.Context, flow *models.FlowDefinition) error {
	rows, err := database.DB.Query(ctx, `
        SELECT fs.id, fs.flow_id, fs.screen_id, fs.tab_order, fs.tab_name,
               s.id, s.code, s.name,
               s.requires_approval, s.requires_insurance_approval, s.is_post_approval,
               s.created_at, s.updated_at
        FROM flow_screens fs
        JOIN screen_definitions s ON s.id = fs.screen_id
        WHERE fs.flow_id = $1
        ORDER BY fs.tab_order
    `, flow.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var fs models.FlowScreen
		var screen models.ScreenDefinition
		if err := rows.Scan(
			&fs.ID, &fs.FlowID, &fs.ScreenID, &fs.TabOrder, &fs.TabName,
			&screen.ID, &screen.Code, &screen.Name,
			&screen.RequiresApproval, &screen.RequiresInsuranceApproval, &screen.IsPostApproval,
			&screen.CreatedAt, &screen.UpdatedAt,
		); err != nil {
			return err
		}
		fs.Screen = &screen
		flow.FlowScreens = append(flow.FlowScreens, fs)
	}
	return rows.Err()
}

// loadFields hydrates field definitions and their options for every screen in
// the flow, parsing conditional rules in the same pass.
func (r *FlowRepository) loadFields(ctx context.Context, flow *models.FlowDefinition) error {
	// The same screen may appear on more than one tab, so keep every
	// hydrated instance for each screen id.
	screenIDs := make([]string, 0, len(flow.FlowScreens))
	byID := make(map[string][]*models.ScreenDefinition, len(flow.FlowScreens))
	for i := range flow.FlowScreens {
		s := flow.FlowScreens[i].Screen
		if _, seen := byID[s.ID]; !seen {
			screenIDs = append(screenIDs, s.ID)
		}
		byID[s.ID] = append(byID[s.ID], s)
	}
	if len(screenIDs) == 0 {
		return nil
	}

	rows, err := database.DB.Query(ctx, `
        SELECT id, screen_id, name, label, type, is_required,
               validation_regex, validation_message,
               min_value, max_value, min_length, max_length,
               conditional_field, conditional_value, sort_order,
               visible_to_manager, visible_to_associate, visible_to_viewer,
               editable_by_manager, editable_by_associate, editable_by_viewer
        FROM field_definitions
        WHERE screen_id = ANY($1)
        ORDER BY screen_id, sort_order
    `, screenIDs)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var f models.FieldDefinition
		var fieldType string
		if err := rows.Scan(
			&f.ID, &f.ScreenID, &f.Name, &f.Label, &fieldType, &f.IsRequired,
			&f.ValidationRegex, &f.ValidationMessage,
			&f.MinValue, &f.MaxValue, &f.MinLength, &f.MaxLength,
			&f.ConditionalField, &f.ConditionalValue, &f.SortOrder,
			&f.VisibleToManager, &f.VisibleToAssociate, &f.VisibleToViewer,
			&f.EditableByManager, &f.EditableByAssociate, &f.EditableByViewer,
		); err != nil {
			return err
		}
		f.Type = models.FieldType(fieldType)
		f.Conditional = models.ParseConditionalRule(f.ConditionalField, f.ConditionalValue)

		for _, screen := range byID[f.ScreenID] {
			screen.Fields = append(screen.Fields, f)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	// Index fields only after every append so the pointers stay valid.
	fieldIDs := []string{}
	fieldsByID := map[string][]*models.FieldDefinition{}
	for _, screens := range byID {
		for _, screen := range screens {
			for i := range screen.Fields {
				f := &screen.Fields[i]
				fieldIDs = append(fieldIDs, f.ID)
				fieldsByID[f.ID] = append(fieldsByID[f.ID], f)
			}
		}
	}

	return r.loadOptions(ctx, fieldIDs, fieldsByID)
}

func (r *FlowRepository) loadOptions(ctx context.Context, fieldIDs []string, fieldsByID map[string][]*models.FieldDefinition) error {
	if len(fieldIDs) == 0 {
		return nil
	}

	rows, err := database.DB.Query(ctx, `
        SELECT field_id, value, label
        FROM field_options
        WHERE field_id = ANY($1)
        ORDER BY field_id, sort_order
    `, fieldIDs)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var fieldID string
		var opt models.FieldOption
		if err := rows.Scan(&fieldID, &opt.Value, &opt.Label); err != nil {
			return err
		}
		for _, f := range fieldsByID[fieldID] {
			f.Options = append(f.Options, opt)
		}
	}
	return rows.Err()
}

func (r *FlowRepository) loadBranchAssignments(ctx context.Context, flow *models.FlowDefinition) error {
	rows, err := database.DB.Query(ctx, `
        SELECT id, flow_id, branch_id, manager_access, associate_access, viewer_access
        FROM flow_branch_assignments
        WHERE flow_id = $1
    `, flow.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var a models.BranchAssignment
		if err := rows.Scan(&a.ID, &a.FlowID, &a.BranchID,
			&a.ManagerAccess, &a.AssociateAccess, &a.ViewerAccess); err != nil {
			return err
		}
		flow.BranchAssignments = append(flow.BranchAssignments, a)
	}
	return rows.Err()
}

// ListActive returns all active flows with their branch grants (screens are
// not hydrated; the listing only needs names and accessibility).
func (r *FlowRepository) ListActive(ctx context.Context) ([]models.FlowDefinition, error) {
	rows, err := database.DB.Query(ctx, `
        SELECT id, name, description, is_active, created_at, updated_at
        FROM flow_definitions
        WHERE is_active = TRUE
        ORDER BY name
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flows []models.FlowDefinition
	for rows.Next() {
		var f models.FlowDefinition
		if err := rows.Scan(&f.ID, &f.Name, &f.Description, &f.IsActive, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		flows = append(flows, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range flows {
		if err := r.loadBranchAssignments(ctx, &flows[i]); err != nil {
			return nil, err
		}
	}
	return flows, nil
}
