package tui

import (
	"context"

	"github.com/kingrea/leads-admin/internal/lead"
)

const (
	msgFetchFailed  = "Failed to fetch leads"
	msgSaveFailed   = "Failed to save lead"
	msgDeleteFailed = "Failed to delete lead"
)

// LeadStore is the remote side of the leads screen. *leads.Client satisfies it.
type LeadStore interface {
	List(ctx context.Context) ([]lead.Lead, error)
	Create(ctx context.Context, payload lead.CreateLeadPayload) (lead.Lead, error)
	Update(ctx context.Context, id int64, payload lead.UpdatePayload) (lead.Lead, error)
	Delete(ctx context.Context, id int64) error
}

// leadsView holds the local cache of leads and reconciles it with the results
// of remote calls. It never talks to the store itself; App issues the calls and
// feeds the outcomes back through the apply methods.
type leadsView struct {
	leads      []lead.Lead
	editing    *lead.Lead
	editorOpen bool
	loading    bool
	failed     bool
	errMsg     string
	search     string
}

func (v *leadsView) beginLoad() {
	v.loading = true
}

// applyLoaded replaces the cache wholesale on success. The loading flag is
// cleared on both paths.
func (v *leadsView) applyLoaded(leads []lead.Lead, err error) {
	defer func() { v.loading = false }()
	if err != nil {
		v.fail(msgFetchFailed)
		return
	}
	if leads == nil {
		leads = []lead.Lead{}
	}
	v.leads = leads
	v.clearError()
}

func (v *leadsView) openEditor(target *lead.Lead) {
	if target != nil {
		copied := *target
		target = &copied
	}
	v.editing = target
	v.editorOpen = true
}

func (v *leadsView) closeEditor() {
	v.editing = nil
	v.editorOpen = false
}

// applySaved reconciles a create or update. Failures leave the cache and the
// editor as they were.
func (v *leadsView) applySaved(saved lead.Lead, created bool, err error) {
	if err != nil {
		v.fail(msgSaveFailed)
		return
	}
	if created {
		v.leads = append(v.leads, saved)
	} else if idx := lead.IndexOf(v.leads, saved.ID); idx >= 0 {
		next := make([]lead.Lead, len(v.leads))
		copy(next, v.leads)
		next[idx] = saved
		v.leads = next
	}
	v.clearError()
	v.closeEditor()
}

// applyDeleted drops the entry with id. An id that is not cached is a no-op.
func (v *leadsView) applyDeleted(id int64, err error) {
	if err != nil {
		v.fail(msgDeleteFailed)
		return
	}
	idx := lead.IndexOf(v.leads, id)
	if idx < 0 {
		v.clearError()
		return
	}
	next := make([]lead.Lead, 0, len(v.leads)-1)
	next = append(next, v.leads[:idx]...)
	next = append(next, v.leads[idx+1:]...)
	v.leads = next
	v.clearError()
}

func (v *leadsView) filtered() []lead.Lead {
	return lead.Filter(v.leads, v.search)
}

func (v *leadsView) fail(message string) {
	v.failed = true
	v.errMsg = message
}

func (v *leadsView) clearError() {
	v.failed = false
	v.errMsg = ""
}
