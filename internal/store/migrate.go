package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table names.
const (
	tableNodeProgress     = "node_progress"
	tableTodoItems        = "todo_items"
	tableNodeDefinitions  = "node_definitions"
	tableAppMeta          = "app_meta"
	tableLLMRequestEvents = "llm_request_events"
	tableTransitionEvents = "transition_events"
)

var (
	nodeProgressColumns = []*schema.Column{
		{Name: "user_id", Type: field.TypeString},
		{Name: "node_id", Type: field.TypeString},
		{Name: "category", Type: field.TypeString, Default: ""},
		{Name: "status", Type: field.TypeString},
		{Name: "unlocked_at", Type: field.TypeTime, Nullable: true},
		{Name: "mastered_at", Type: field.TypeTime, Nullable: true},
		{Name: "progress_score", Type: field.TypeInt, Default: 0},
		{Name: "updated_at", Type: field.TypeTime},
	}
	nodeProgressTable = &schema.Table{
		Name:       tableNodeProgress,
		Columns:    nodeProgressColumns,
		PrimaryKey: []*schema.Column{nodeProgressColumns[0], nodeProgressColumns[1]},
		Indexes: []*schema.Index{
			{Name: "nodeprogress_user_id_status", Columns: []*schema.Column{nodeProgressColumns[0], nodeProgressColumns[3]}},
		},
	}

	todoItemsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "user_id", Type: field.TypeString},
		{Name: "text", Type: field.TypeString, Size: 2147483647},
		{Name: "completed", Type: field.TypeBool, Default: false},
		{Name: "category", Type: field.TypeString, Default: ""},
		{Name: "node_id", Type: field.TypeString, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "completed_at", Type: field.TypeTime, Nullable: true},
	}
	todoItemsTable = &schema.Table{
		Name:       tableTodoItems,
		Columns:    todoItemsColumns,
		PrimaryKey: []*schema.Column{todoItemsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "todoitem_user_id", Columns: []*schema.Column{todoItemsColumns[1]}},
			{Name: "todoitem_user_id_node_id", Columns: []*schema.Column{todoItemsColumns[1], todoItemsColumns[5]}},
		},
	}

	nodeDefinitionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "name_en", Type: field.TypeString, Default: ""},
		{Name: "name_zh", Type: field.TypeString, Default: ""},
		{Name: "description_en", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "description_zh", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "category", Type: field.TypeString},
		{Name: "kind", Type: field.TypeString},
		{Name: "pos_x", Type: field.TypeFloat64, Default: 0},
		{Name: "pos_y", Type: field.TypeFloat64, Default: 0},
		{Name: "connections", Type: field.TypeJSON},
		{Name: "requirements", Type: field.TypeJSON},
		{Name: "keywords", Type: field.TypeJSON},
		{Name: "display_order", Type: field.TypeInt, Default: 0},
		{Name: "active", Type: field.TypeBool, Default: true},
	}
	nodeDefinitionsTable = &schema.Table{
		Name:       tableNodeDefinitions,
		Columns:    nodeDefinitionsColumns,
		PrimaryKey: []*schema.Column{nodeDefinitionsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "nodedefinition_display_order", Columns: []*schema.Column{nodeDefinitionsColumns[12]}},
		},
	}

	appMetaColumns = []*schema.Column{
		{Name: "name", Type: field.TypeString},
		{Name: "value", Type: field.TypeString, Default: ""},
	}
	appMetaTable = &schema.Table{
		Name:       tableAppMeta,
		Columns:    appMetaColumns,
		PrimaryKey: []*schema.Column{appMetaColumns[0]},
	}

	llmRequestEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	llmRequestEventsTable = &schema.Table{
		Name:       tableLLMRequestEvents,
		Columns:    llmRequestEventsColumns,
		PrimaryKey: []*schema.Column{llmRequestEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequestevent_timestamp", Columns: []*schema.Column{llmRequestEventsColumns[2]}},
			{Name: "llmrequestevent_purpose", Columns: []*schema.Column{llmRequestEventsColumns[5]}},
		},
	}

	transitionEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "user_id", Type: field.TypeString},
		{Name: "node_id", Type: field.TypeString},
		{Name: "from_state", Type: field.TypeString},
		{Name: "to_state", Type: field.TypeString},
		{Name: "trigger_kind", Type: field.TypeString},
	}
	transitionEventsTable = &schema.Table{
		Name:       tableTransitionEvents,
		Columns:    transitionEventsColumns,
		PrimaryKey: []*schema.Column{transitionEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "transitionevent_user_id", Columns: []*schema.Column{transitionEventsColumns[3]}},
			{Name: "transitionevent_node_id", Columns: []*schema.Column{transitionEventsColumns[4]}},
		},
	}

	// Tables holds every table managed by auto-migration.
	Tables = []*schema.Table{
		nodeProgressTable,
		todoItemsTable,
		nodeDefinitionsTable,
		appMetaTable,
		llmRequestEventsTable,
		transitionEventsTable,
	}
)
