package postgresql

// migrations returns the schema migrations keyed by version.
func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE IF NOT EXISTS workflows (
				id TEXT PRIMARY KEY,
				organization_id TEXT NOT NULL,
				name TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				status TEXT NOT NULL,
				trigger JSONB NOT NULL,
				actions JSONB,
				metadata JSONB,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				deleted_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX IF NOT EXISTS idx_workflows_org_status
				ON workflows (organization_id, status)
				WHERE deleted_at IS NULL;

			CREATE TABLE IF NOT EXISTS workflow_executions (
				id TEXT PRIMARY KEY,
				workflow_id TEXT NOT NULL,
				organization_id TEXT NOT NULL,
				status TEXT NOT NULL,
				trigger_event JSONB,
				results JSONB,
				started_at TIMESTAMP WITH TIME ZONE NOT NULL,
				completed_at TIMESTAMP WITH TIME ZONE,
				total_duration_ms BIGINT NOT NULL DEFAULT 0
			);

			CREATE INDEX IF NOT EXISTS idx_executions_workflow
				ON workflow_executions (workflow_id, started_at DESC);

			CREATE TABLE IF NOT EXISTS execution_steps (
				id TEXT PRIMARY KEY,
				execution_id TEXT NOT NULL,
				step_order INTEGER NOT NULL,
				step_type TEXT NOT NULL,
				step_name TEXT NOT NULL,
				status TEXT NOT NULL,
				input_data JSONB,
				output_data JSONB,
				error_message TEXT NOT NULL DEFAULT '',
				start_time TIMESTAMP WITH TIME ZONE NOT NULL,
				duration_ms BIGINT NOT NULL DEFAULT 0
			);

			CREATE INDEX IF NOT EXISTS idx_steps_execution
				ON execution_steps (execution_id, step_order);

			CREATE TABLE IF NOT EXISTS promo_code_batches (
				id TEXT PRIMARY KEY,
				organization_id TEXT NOT NULL,
				name TEXT NOT NULL,
				discount_type TEXT NOT NULL DEFAULT '',
				discount_value DOUBLE PRECISION NOT NULL DEFAULT 0,
				valid_from TIMESTAMP WITH TIME ZONE NOT NULL,
				valid_until TIMESTAMP WITH TIME ZONE NOT NULL,
				active BOOLEAN NOT NULL DEFAULT TRUE,
				used_count INTEGER NOT NULL DEFAULT 0,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE TABLE IF NOT EXISTS promo_codes (
				id TEXT PRIMARY KEY,
				batch_id TEXT NOT NULL REFERENCES promo_code_batches (id),
				code TEXT NOT NULL,
				is_used BOOLEAN NOT NULL DEFAULT FALSE,
				used_at TIMESTAMP WITH TIME ZONE,
				used_by_execution TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				UNIQUE (batch_id, code)
			);

			CREATE INDEX IF NOT EXISTS idx_promo_codes_batch_unused
				ON promo_codes (batch_id, created_at)
				WHERE is_used = FALSE;
		`,
	}
}
