// internal/workers/infrastructure/build-chat-response/schema.go
package buildchatresponse

// responseSchema pins the wire contract with the browser. Building a payload
// that fails this schema is a bug in this worker, not in the caller.
const responseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["session_id", "reply", "customer_form", "extraction", "recommendations"],
  "properties": {
    "session_id": {"type": "string", "minLength": 1},
    "reply": {"type": "string"},
    "customer_form": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["field", "value", "populated", "extracted"],
        "properties": {
          "field": {"type": "string", "minLength": 1},
          "value": {"type": "string", "minLength": 1},
          "populated": {"type": "boolean"},
          "extracted": {"type": "boolean"}
        }
      }
    },
    "extraction": {
      "type": "object",
      "required": ["new_fields_count", "confidence"],
      "properties": {
        "new_fields_count": {"type": "integer", "minimum": 0},
        "confidence": {"type": "number", "minimum": 0, "maximum": 1}
      }
    },
    "recommendations": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["lender_name", "product_name", "recommendation_status", "display_order"],
        "properties": {
          "lender_name": {"type": "string"},
          "product_name": {"type": "string"},
          "recommendation_status": {"enum": ["current", "previous"]},
          "display_order": {"type": "integer", "minimum": 1}
        }
      }
    }
  }
}`
