// Package migrate declares the application tables and creates them with
// ent's schema migrator.
package migrate

import (
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var dateType = map[string]string{"postgres": "date"}

var (
	ProfessionalsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "user_id", Type: field.TypeUUID, Unique: true},
		{Name: "full_name", Type: field.TypeString, Size: 200},
		{Name: "specialty", Type: field.TypeString, Size: 120},
		{Name: "email", Type: field.TypeString, Size: 254, Default: ""},
		{Name: "active", Type: field.TypeBool, Default: true},
	}
	ProfessionalsTable = &schema.Table{
		Name:       "professionals",
		Columns:    ProfessionalsColumns,
		PrimaryKey: []*schema.Column{ProfessionalsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "professional_specialty", Columns: []*schema.Column{ProfessionalsColumns[3]}},
		},
	}

	PatientsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "user_id", Type: field.TypeUUID, Unique: true},
		{Name: "full_name", Type: field.TypeString, Size: 200},
		{Name: "national_id", Type: field.TypeString, Size: 20, Unique: true},
		{Name: "email", Type: field.TypeString, Size: 254, Default: ""},
		{Name: "phone", Type: field.TypeString, Size: 20, Default: ""},
		{Name: "address", Type: field.TypeString, Size: 300, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	PatientsTable = &schema.Table{
		Name:       "patients",
		Columns:    PatientsColumns,
		PrimaryKey: []*schema.Column{PatientsColumns[0]},
	}

	SchedulesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "professional_id", Type: field.TypeUUID},
		{Name: "date", Type: field.TypeTime, SchemaType: dateType},
		{Name: "start_time", Type: field.TypeString, Size: 5},
		{Name: "end_time", Type: field.TypeString, Size: 5},
		{Name: "slot_minutes", Type: field.TypeInt},
		{Name: "active", Type: field.TypeBool, Default: true},
		{Name: "notes", Type: field.TypeString, Size: 500, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	SchedulesTable = &schema.Table{
		Name:       "schedules",
		Columns:    SchedulesColumns,
		PrimaryKey: []*schema.Column{SchedulesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "schedules_professionals_schedules",
				Columns:    []*schema.Column{SchedulesColumns[1]},
				RefColumns: []*schema.Column{ProfessionalsColumns[0]},
				OnDelete:   schema.NoAction,
			},
		},
		Indexes: []*schema.Index{
			{Name: "schedule_professional_id_date", Unique: true, Columns: []*schema.Column{SchedulesColumns[1], SchedulesColumns[2]}},
			{Name: "schedule_date", Columns: []*schema.Column{SchedulesColumns[2]}},
		},
	}

	BlocksColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "schedule_id", Type: field.TypeUUID},
		{Name: "start_at", Type: field.TypeTime},
		{Name: "end_at", Type: field.TypeTime},
		{Name: "available", Type: field.TypeBool, Default: true},
		{Name: "kind", Type: field.TypeEnum, Enums: []string{"consultation", "reserved", "blocked"}, Default: "consultation"},
		{Name: "notes", Type: field.TypeString, Size: 300, Default: ""},
	}
	BlocksTable = &schema.Table{
		Name:       "blocks",
		Columns:    BlocksColumns,
		PrimaryKey: []*schema.Column{BlocksColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "blocks_schedules_blocks",
				Columns:    []*schema.Column{BlocksColumns[1]},
				RefColumns: []*schema.Column{SchedulesColumns[0]},
				OnDelete:   schema.NoAction,
			},
		},
		Indexes: []*schema.Index{
			{Name: "block_schedule_id_start_at", Unique: true, Columns: []*schema.Column{BlocksColumns[1], BlocksColumns[2]}},
			{Name: "block_start_at", Columns: []*schema.Column{BlocksColumns[2]}},
		},
	}

	CancellationReasonsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "description", Type: field.TypeString, Size: 200, Unique: true},
		{Name: "active", Type: field.TypeBool, Default: true},
		{Name: "staff_only", Type: field.TypeBool, Default: false},
	}
	CancellationReasonsTable = &schema.Table{
		Name:       "cancellation_reasons",
		Columns:    CancellationReasonsColumns,
		PrimaryKey: []*schema.Column{CancellationReasonsColumns[0]},
	}

	AppointmentsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "patient_id", Type: field.TypeUUID},
		{Name: "block_id", Type: field.TypeUUID},
		{Name: "requested_at", Type: field.TypeTime},
		{Name: "status", Type: field.TypeEnum, Enums: []string{"scheduled", "confirmed", "in_progress", "attended", "cancelled", "no_show"}},
		{Name: "reason_for_visit", Type: field.TypeString, Size: 500, Default: ""},
		{Name: "notes", Type: field.TypeString, Size: 1000, Default: ""},
		{Name: "cancellation_reason_id", Type: field.TypeUUID, Nullable: true},
		{Name: "cancelled_at", Type: field.TypeTime, Nullable: true},
		{Name: "cancelled_by", Type: field.TypeUUID, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	AppointmentsTable = &schema.Table{
		Name:       "appointments",
		Columns:    AppointmentsColumns,
		PrimaryKey: []*schema.Column{AppointmentsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "appointments_patients_appointments",
				Columns:    []*schema.Column{AppointmentsColumns[1]},
				RefColumns: []*schema.Column{PatientsColumns[0]},
				OnDelete:   schema.NoAction,
			},
			{
				Symbol:     "appointments_blocks_appointments",
				Columns:    []*schema.Column{AppointmentsColumns[2]},
				RefColumns: []*schema.Column{BlocksColumns[0]},
				OnDelete:   schema.NoAction,
			},
			{
				Symbol:     "appointments_cancellation_reasons_appointments",
				Columns:    []*schema.Column{AppointmentsColumns[7]},
				RefColumns: []*schema.Column{CancellationReasonsColumns[0]},
				OnDelete:   schema.SetNull,
			},
		},
		Indexes: []*schema.Index{
			// One non-terminal appointment per block; terminal rows stay.
			{
				Name:       "appointment_block_id_active",
				Unique:     true,
				Columns:    []*schema.Column{AppointmentsColumns[2]},
				Annotation: &entsql.IndexAnnotation{Where: "status IN ('scheduled', 'confirmed', 'in_progress')"},
			},
			{Name: "appointment_patient_id_status", Columns: []*schema.Column{AppointmentsColumns[1], AppointmentsColumns[4]}},
		},
	}

	Tables = []*schema.Table{
		ProfessionalsTable,
		PatientsTable,
		SchedulesTable,
		BlocksTable,
		CancellationReasonsTable,
		AppointmentsTable,
	}
)

func init() {
	SchedulesTable.ForeignKeys[0].RefTable = ProfessionalsTable
	BlocksTable.ForeignKeys[0].RefTable = SchedulesTable
	AppointmentsTable.ForeignKeys[0].RefTable = PatientsTable
	AppointmentsTable.ForeignKeys[1].RefTable = BlocksTable
	AppointmentsTable.ForeignKeys[2].RefTable = CancellationReasonsTable
}
