package messages

// UKI messages for unified kernel image composition.
const (
	UKISectionSourceMissingFmt = "section %s has no source file"
	UKISectionOrderFmt         = "section %s at %s does not follow %s at %s"
	UKISectionMissingFmt       = "mandatory section %s is missing"
	UKIRequiresUnifiedFmt      = "unified image composition requires the bootctl-unified variant (selected: %s)"
	UKIOSReleaseMissingFmt     = "release identity file %s is missing: %v"
	UKIStubNotFoundFmt         = "no EFI stub matching %q in %s"
	UKISplashSkipped           = "splash configured but missing; image built without .splash"
)
