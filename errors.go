package gtarray

import "errors"

// Error kinds surfaced by this package. Callers should test with errors.Is,
// since most returns wrap these with additional context.
var (
	// ErrUnknownAllele indicates a referenced allele is absent from the
	// variant's allele list (and adding was not requested).
	ErrUnknownAllele = errors.New("unknown allele")

	// ErrTooManyAlleles indicates the allele list would exceed its maximum
	// size, or that more alleles were supplied than the variant's ploidy.
	ErrTooManyAlleles = errors.New("too many alleles")

	// ErrInvalidAlleleIndex indicates an allele index outside the valid
	// range for the variant (and not the missing sentinel).
	ErrInvalidAlleleIndex = errors.New("invalid allele index")

	// ErrIncompatibleVariant indicates an operation across genotypes or
	// arrays whose variants do not match.
	ErrIncompatibleVariant = errors.New("incompatible variant")

	// ErrUnsupportedPloidy indicates an operation that requires diploid data.
	ErrUnsupportedPloidy = errors.New("unsupported ploidy")

	// ErrUnsupportedMultiAllelic indicates an operation that requires a
	// strictly biallelic variant (one reference and one alternate allele).
	ErrUnsupportedMultiAllelic = errors.New("variant is not biallelic")

	// ErrCorruptFile indicates bad magic bytes or a truncated record.
	ErrCorruptFile = errors.New("corrupt file")

	// ErrIndexOutOfBounds indicates an index past the end of an array.
	ErrIndexOutOfBounds = errors.New("index out of bounds")
)
