package blast

// PrimerBlastURL is the external query surface this driver automates.
const PrimerBlastURL = "https://www.ncbi.nlm.nih.gov/tools/primer-blast"

// Form element IDs on the Primer-BLAST page. These track the live page
// layout; a missing critical element means the layout changed and the
// driver needs updating.
const (
	idSeqInput     = "seq"
	idOneTargetTab = "OneTargTab"
	idAdvanced     = "btnDescrOver"

	idPCRMin = "PRIMER_PRODUCT_MIN"
	idPCRMax = "PRIMER_PRODUCT_MAX"

	idTmMin     = "PRIMER_MIN_TM"
	idTmOpt     = "PRIMER_OPT_TM"
	idTmMax     = "PRIMER_MAX_TM"
	idTmMaxDiff = "PRIMER_MAX_DIFF_TM"

	idSizeMin = "PRIMER_MIN_SIZE"
	idSizeOpt = "PRIMER_OPT_SIZE"
	idSizeMax = "PRIMER_MAX_SIZE"

	idNumReturn = "PRIMER_NUM_RETURN"
	idMaxEndGC  = "PRIMER_MAX_END_GC"
	idMaxPolyX  = "POLYX"

	idForwardStart = "PRIMER5_START"
	idForwardEnd   = "PRIMER5_END"
	idReverseStart = "PRIMER3_START"
	idReverseEnd   = "PRIMER3_END"

	idOrganism = "ORGANISM"
	idDatabase = "PRIMER_SPECIFICITY_DATABASE"
)

// CSS and XPath selectors that are not simple IDs.
const (
	selSubmit       = "input.blastbutton.prbutton"
	xpathNoSNP      = "//label[@for='NO_SNP']"
	xpathNewWindow  = "//label[@for='nw2']"
	selErrorBanner  = "p.error, .error.msg"
	databaseValue   = "PRIMERDB/genome_selected_species"
	organismDefault = "Homo sapiens"
)
