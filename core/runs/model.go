package runs

import (
	"time"

	"sheet-reconciler/core/reconcile"
)

const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Run is one recorded merge.
type Run struct {
	ID             string    `gorm:"primaryKey;column:id;type:char(36)" json:"id"`
	MasterLocation string    `gorm:"column:master_location;type:varchar(1024);not null" json:"master_location"`
	ChildLocation  string    `gorm:"column:child_location;type:varchar(1024);not null" json:"child_location"`
	OutputPath     string    `gorm:"column:output_path;type:varchar(1024)" json:"output_path,omitempty"`
	RemoteObject   string    `gorm:"column:remote_object;type:varchar(1024)" json:"remote_object,omitempty"`
	Attempts       int       `gorm:"column:attempts;default:0" json:"attempts"`
	SchemaWidth    int       `gorm:"column:schema_width;default:0" json:"schema_width"`
	MasterRows     int       `gorm:"column:master_rows;default:0" json:"master_rows"`
	ChildRows      int       `gorm:"column:child_rows;default:0" json:"child_rows"`
	Eligible       int       `gorm:"column:eligible;default:0" json:"eligible"`
	Rejected       int       `gorm:"column:rejected;default:0" json:"rejected"`
	Aligned        int       `gorm:"column:aligned;default:0" json:"aligned"`
	Orphans        int       `gorm:"column:orphans;default:0" json:"orphans"`
	OutputRows     int       `gorm:"column:output_rows;default:0" json:"output_rows"`
	Status         string    `gorm:"column:status;type:varchar(16);index;not null" json:"status"`
	Error          string    `gorm:"column:error;type:text" json:"error,omitempty"`
	StartedAt      time.Time `gorm:"column:started_at;index" json:"started_at"`
	FinishedAt     time.Time `gorm:"column:finished_at" json:"finished_at"`
}

func (Run) TableName() string {
	return "merge_runs"
}

// NewRun starts a ledger entry for merging child into master.
func NewRun(master, child reconcile.DatasetConfig, started time.Time) *Run {
	return &Run{
		MasterLocation: master.Location,
		ChildLocation:  child.Location,
		StartedAt:      started.UTC(),
	}
}

// Finish fills in the outcome of the merge. res is ignored when err is set.
func (r *Run) Finish(res *reconcile.Result, err error, at time.Time) {
	r.FinishedAt = at.UTC()
	if err != nil {
		r.Status = StatusFailed
		r.Error = err.Error()
		return
	}

	r.Status = StatusSucceeded
	r.OutputPath = res.OutputPath
	r.Attempts = res.Attempts
	r.SchemaWidth = len(res.Schema)
	r.MasterRows = res.Summary.MasterRows
	r.ChildRows = res.Summary.ChildRows
	r.Eligible = res.Summary.Eligible
	r.Rejected = res.Summary.Rejected
	r.Aligned = res.Summary.Aligned
	r.Orphans = res.Summary.Orphans
	r.OutputRows = res.Summary.OutputRows
}
