// Package occfeed downloads and parses the OCC (Options Clearing
// Corporation) directory of listed equity options.
//
// The feed is a semi-structured text file, nominally tab-separated with the
// underlying ticker in the second column:
//
//	1AAL  	AAL   	American Airlines Group, Inc. (AMER/FLEX)	ABCPX	25000000	EF
//
// Real-world dumps mix tabs and space runs, so parsing is defensive: bad
// lines are skipped, never fatal.
package occfeed
