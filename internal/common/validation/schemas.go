package validation

// AdvisoryReplySchema is the output contract given to the model.
const AdvisoryReplySchema = `{
  "type": "object",
  "required": ["bl_type", "threshold_value", "reasoning"],
  "properties": {
    "bl_type": {
      "type": "string",
      "pattern": "(?i)^\\s*(retail|non[\\s_-]*retail|not[\\s_-]*retail|wholesale|bulk|unknown)\\s*$"
    },
    "threshold_value": {"type": ["string", "number", "null"]},
    "reasoning": {"type": "string"},
    "evaluation_signals": {
      "type": ["object", "null"],
      "properties": {
        "threshold": {"type": ["string", "null"]},
        "order_value": {"type": ["string", "null"]},
        "buyer_intent": {"type": ["string", "null"]},
        "product_type": {"type": ["string", "null"]}
      }
    },
    "conflict_notes": {"type": ["string", "null"]}
  }
}`

// RunAuditRequestSchema describes a run request arriving from a job or the CLI.
const RunAuditRequestSchema = `{
  "type": "object",
  "required": ["sessionId", "auditPrompt", "rawRecords", "thresholds"],
  "properties": {
    "sessionId": {"type": "string", "minLength": 1},
    "auditPrompt": {"type": "string", "minLength": 1},
    "rawRecords": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["id", "categoryId"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "categoryId": {"type": "string"},
          "quantity": {"type": ["string", "number", "null"]},
          "quantityUnit": {"type": ["string", "null"]},
          "segmentLabel": {"type": ["string", "null"]},
          "businessCategoryOverride": {"type": ["string", "number", "boolean", "null"]}
        }
      }
    },
    "thresholds": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["categoryId", "cutoffQuantity"],
        "properties": {
          "categoryId": {"type": "string"},
          "cutoffQuantity": {"type": ["string", "number"]},
          "cutoffUnit": {"type": ["string", "null"]}
        }
      }
    }
  }
}`

var (
	AdvisoryReply   = MustCompile("advisory-reply", AdvisoryReplySchema)
	RunAuditRequest = MustCompile("run-audit-request", RunAuditRequestSchema)
)
