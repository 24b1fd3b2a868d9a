package tools

func SafeWriteAnnotations() map[string]bool {
	return map[string]bool{
		"readOnlyHint":    false,
		"destructiveHint": false,
		"idempotentHint":  true,
		"openWorldHint":   false,
	}
}

func NonIdempotentWriteAnnotations() map[string]bool {
	return map[string]bool{
		"readOnlyHint":    false,
		"destructiveHint": false,
		"idempotentHint":  false,
		"openWorldHint":   false,
	}
}
