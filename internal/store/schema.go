package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table definitions applied by the ent migrator on Open.

var (
	usersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "email", Type: field.TypeString, Unique: true},
		{Name: "name", Type: field.TypeString},
		{Name: "role", Type: field.TypeString},
		{Name: "created_at", Type: field.TypeInt64},
	}
	usersTable = &schema.Table{
		Name:       "users",
		Columns:    usersColumns,
		PrimaryKey: []*schema.Column{usersColumns[0]},
	}

	sessionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "user_id", Type: field.TypeString},
		{Name: "created_at", Type: field.TypeInt64},
	}
	sessionsTable = &schema.Table{
		Name:       "sessions",
		Columns:    sessionsColumns,
		PrimaryKey: []*schema.Column{sessionsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{{
			Symbol:     "sessions_users_sessions",
			Columns:    []*schema.Column{sessionsColumns[1]},
			RefColumns: []*schema.Column{usersColumns[0]},
			OnDelete:   schema.Cascade,
		}},
	}

	coursesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "name", Type: field.TypeString},
		{Name: "description", Type: field.TypeString, Default: ""},
		{Name: "deadline", Type: field.TypeString, Default: ""},
		{Name: "owner_id", Type: field.TypeString, Default: ""},
		{Name: "created_at", Type: field.TypeInt64},
		{Name: "updated_at", Type: field.TypeInt64},
	}
	coursesTable = &schema.Table{
		Name:       "courses",
		Columns:    coursesColumns,
		PrimaryKey: []*schema.Column{coursesColumns[0]},
		Indexes: []*schema.Index{{
			Name:    "courses_owner_id",
			Columns: []*schema.Column{coursesColumns[4]},
		}},
	}

	itemsColumns = []*schema.Column{
		{Name: "course_id", Type: field.TypeString},
		{Name: "id", Type: field.TypeString},
		{Name: "position", Type: field.TypeInt},
		{Name: "kind", Type: field.TypeString},
		{Name: "title", Type: field.TypeString, Default: ""},
		{Name: "body", Type: field.TypeString, Default: ""},
		{Name: "question", Type: field.TypeString, Default: ""},
		{Name: "answer", Type: field.TypeString, Default: ""},
	}
	itemsTable = &schema.Table{
		Name:       "items",
		Columns:    itemsColumns,
		PrimaryKey: []*schema.Column{itemsColumns[0], itemsColumns[1]},
		ForeignKeys: []*schema.ForeignKey{{
			Symbol:     "items_courses_items",
			Columns:    []*schema.Column{itemsColumns[0]},
			RefColumns: []*schema.Column{coursesColumns[0]},
			OnDelete:   schema.Cascade,
		}},
	}

	assignmentsColumns = []*schema.Column{
		{Name: "course_id", Type: field.TypeString},
		{Name: "user_id", Type: field.TypeString},
		{Name: "deadline", Type: field.TypeString, Default: ""},
		{Name: "assigned_at", Type: field.TypeInt64},
	}
	assignmentsTable = &schema.Table{
		Name:       "assignments",
		Columns:    assignmentsColumns,
		PrimaryKey: []*schema.Column{assignmentsColumns[0], assignmentsColumns[1]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "assignments_courses_assignments",
				Columns:    []*schema.Column{assignmentsColumns[0]},
				RefColumns: []*schema.Column{coursesColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "assignments_users_assignments",
				Columns:    []*schema.Column{assignmentsColumns[1]},
				RefColumns: []*schema.Column{usersColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
	}

	progressColumns = []*schema.Column{
		{Name: "user_id", Type: field.TypeString},
		{Name: "course_id", Type: field.TypeString},
		{Name: "current_index", Type: field.TypeInt},
		{Name: "updated_at", Type: field.TypeInt64},
	}
	progressTable = &schema.Table{
		Name:       "progress",
		Columns:    progressColumns,
		PrimaryKey: []*schema.Column{progressColumns[0], progressColumns[1]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "progress_users_progress",
				Columns:    []*schema.Column{progressColumns[0]},
				RefColumns: []*schema.Column{usersColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "progress_courses_progress",
				Columns:    []*schema.Column{progressColumns[1]},
				RefColumns: []*schema.Column{coursesColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
	}

	completedColumns = []*schema.Column{
		{Name: "user_id", Type: field.TypeString},
		{Name: "course_id", Type: field.TypeString},
		{Name: "task_id", Type: field.TypeString},
		{Name: "completed_at", Type: field.TypeInt64},
	}
	completedTable = &schema.Table{
		Name:       "completed_tasks",
		Columns:    completedColumns,
		PrimaryKey: []*schema.Column{completedColumns[0], completedColumns[1], completedColumns[2]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "completed_tasks_users_completed",
				Columns:    []*schema.Column{completedColumns[0]},
				RefColumns: []*schema.Column{usersColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "completed_tasks_courses_completed",
				Columns:    []*schema.Column{completedColumns[1]},
				RefColumns: []*schema.Column{coursesColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
	}

	// events is the append-only audit log. seq gives a global order
	// across event kinds.
	eventsColumns = []*schema.Column{
		{Name: "seq", Type: field.TypeInt64, Increment: true},
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "kind", Type: field.TypeString},
		{Name: "user_id", Type: field.TypeString, Default: ""},
		{Name: "course_id", Type: field.TypeString, Default: ""},
		{Name: "payload", Type: field.TypeString, Default: "{}"},
		{Name: "created_at", Type: field.TypeInt64},
	}
	eventsTable = &schema.Table{
		Name:       "events",
		Columns:    eventsColumns,
		PrimaryKey: []*schema.Column{eventsColumns[0]},
		Indexes: []*schema.Index{{
			Name:    "events_user_id_kind",
			Columns: []*schema.Column{eventsColumns[3], eventsColumns[2]},
		}},
	}

	tables = []*schema.Table{
		usersTable,
		sessionsTable,
		coursesTable,
		itemsTable,
		assignmentsTable,
		progressTable,
		completedTable,
		eventsTable,
	}
)

func init() {
	sessionsTable.ForeignKeys[0].RefTable = usersTable
	itemsTable.ForeignKeys[0].RefTable = coursesTable
	assignmentsTable.ForeignKeys[0].RefTable = coursesTable
	assignmentsTable.ForeignKeys[1].RefTable = usersTable
	progressTable.ForeignKeys[0].RefTable = usersTable
	progressTable.ForeignKeys[1].RefTable = coursesTable
	completedTable.ForeignKeys[0].RefTable = usersTable
	completedTable.ForeignKeys[1].RefTable = coursesTable
}
