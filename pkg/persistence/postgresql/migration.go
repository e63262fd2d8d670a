package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Workflow records created at generation start and finalized at
			-- generation end
			CREATE TABLE workflows (
				id UUID PRIMARY KEY,
				owner VARCHAR(255) NOT NULL,
				prompt TEXT NOT NULL,
				status VARCHAR(50) NOT NULL,
				document JSONB,
				validation_errors JSONB,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_workflows_owner ON workflows(owner);
			CREATE INDEX idx_workflows_status ON workflows(status);
			CREATE INDEX idx_workflows_created_at ON workflows(created_at);

			-- Per-stage execution traces, two writes per stage (running then
			-- terminal)
			CREATE TABLE stage_results (
				id VARCHAR(255) PRIMARY KEY,
				workflow_id UUID NOT NULL REFERENCES workflows(id) ON DELETE CASCADE,
				stage_number INT NOT NULL,
				stage_name VARCHAR(50) NOT NULL,
				input JSONB,
				output JSONB,
				status VARCHAR(50) NOT NULL,
				error_message TEXT,
				execution_time_ms BIGINT NOT NULL DEFAULT 0,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				completed_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX idx_stage_results_workflow_id ON stage_results(workflow_id);
			CREATE INDEX idx_stage_results_created_at ON stage_results(created_at);
			CREATE UNIQUE INDEX idx_stage_results_workflow_stage ON stage_results(workflow_id, stage_number);

			-- Durable automation records created after successful generations
			CREATE TABLE automations (
				id UUID PRIMARY KEY,
				workflow_id UUID NOT NULL REFERENCES workflows(id),
				owner VARCHAR(255) NOT NULL,
				name VARCHAR(255) NOT NULL,
				document JSONB NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_automations_owner ON automations(owner);
			CREATE INDEX idx_automations_workflow_id ON automations(workflow_id);
		`,
	}
}
