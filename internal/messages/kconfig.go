package messages

// Kconfig messages for the newconfig operation.
const (
	KconfigOpRead     = "read"
	KconfigSeeded     = "seeded .config from the config store"
	KconfigUnchanged  = "kernel configuration unchanged"
	KconfigConfirmFmt = "Save the updated configuration to %s?"
	KconfigNoTerminal = "not saving the updated configuration: no terminal to confirm (use --save-config)"
	KconfigNotSaved   = "updated configuration not saved"
	KconfigSaved      = "updated configuration saved"
)
