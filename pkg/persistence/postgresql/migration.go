package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE workflows (
				id VARCHAR(255) PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				status VARCHAR(50) NOT NULL CHECK (status IN ('draft', 'active', 'archived')),
				nodes JSONB NOT NULL DEFAULT '[]',
				edges JSONB NOT NULL DEFAULT '[]',
				variables JSONB NOT NULL DEFAULT '{}',
				metadata JSONB,
				user_id VARCHAR(255) NOT NULL,
				team_id VARCHAR(255),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				deleted_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX idx_workflows_status ON workflows(status);
			CREATE INDEX idx_workflows_user_id ON workflows(user_id);
			CREATE INDEX idx_workflows_created_at ON workflows(created_at);
			CREATE INDEX idx_workflows_deleted_at ON workflows(deleted_at);

			CREATE TABLE executions (
				id VARCHAR(255) PRIMARY KEY,
				workflow_id VARCHAR(255) NOT NULL REFERENCES workflows(id),
				user_id VARCHAR(255) NOT NULL,
				status VARCHAR(50) NOT NULL CHECK (status IN ('running', 'paused', 'completed', 'failed', 'cancelled')),
				paused_node_id VARCHAR(255),
				failed_node_id VARCHAR(255),
				error_message TEXT NOT NULL DEFAULT '',
				started_at TIMESTAMP WITH TIME ZONE NOT NULL,
				completed_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX idx_executions_workflow_id ON executions(workflow_id);
			CREATE INDEX idx_executions_status ON executions(status);
			CREATE INDEX idx_executions_started_at ON executions(started_at);

			CREATE TABLE execution_progress (
				execution_id VARCHAR(255) PRIMARY KEY REFERENCES executions(id) ON DELETE CASCADE,
				node_statuses JSONB NOT NULL DEFAULT '{}',
				node_results JSONB NOT NULL DEFAULT '{}',
				completed_nodes JSONB NOT NULL DEFAULT '[]',
				current_node_id VARCHAR(255) NOT NULL DEFAULT '',
				percent INT NOT NULL DEFAULT 0,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE TABLE waiting_executions (
				id VARCHAR(255) PRIMARY KEY,
				execution_id VARCHAR(255) NOT NULL REFERENCES executions(id),
				workflow_id VARCHAR(255) NOT NULL,
				user_id VARCHAR(255) NOT NULL DEFAULT '',
				node_id VARCHAR(255) NOT NULL,
				event_type VARCHAR(50) NOT NULL CHECK (event_type IN ('webhook', 'custom_event', 'integration_event', 'human_response')),
				provider VARCHAR(255) NOT NULL DEFAULT '',
				webhook_path VARCHAR(255) NOT NULL DEFAULT '',
				event_name VARCHAR(255) NOT NULL DEFAULT '',
				match_condition JSONB,
				execution_data JSONB NOT NULL DEFAULT '{}',
				status VARCHAR(50) NOT NULL CHECK (status IN ('waiting', 'resumed')),
				resume_reason VARCHAR(255) NOT NULL DEFAULT '',
				timeout_at TIMESTAMP WITH TIME ZONE,
				timeout_action VARCHAR(50),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				resumed_at TIMESTAMP WITH TIME ZONE
			);

			-- One open wait per execution.
			CREATE UNIQUE INDEX idx_waiting_executions_open
				ON waiting_executions(execution_id) WHERE status = 'waiting';

			-- Coarse intake lookup: event type plus discriminators.
			CREATE INDEX idx_waiting_executions_lookup
				ON waiting_executions(event_type, provider, webhook_path, event_name) WHERE status = 'waiting';

			CREATE INDEX idx_waiting_executions_timeout
				ON waiting_executions(timeout_at) WHERE status = 'waiting';
		`,
	}
}
