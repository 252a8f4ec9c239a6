// Package domain models NOAA NCEI 1991-2020 climate-normals station data
// and the types shared across the gridding pipeline.
//
// # Data Source
//
// Station normals originate from the NCEI "US Climate Normals" annual/
// seasonal multivariate archive, one CSV per station, combined upstream into
// a single wide table (one row per station, one column per normal). The
// columns this system reads:
//
//	STATION                      station identifier
//	LATITUDE, LONGITUDE          geographic position, decimal degrees
//	<VARIABLE>                   e.g. ANN-TAVG-NORMAL, JJA-TMIN-NORMAL
//	comp_flag_<VARIABLE>         per-variable completeness flag
//
// # Completeness flags
//
// Each normal carries a flag describing how much of the 30-year record was
// available when it was computed:
//
//	C  complete       whole record present
//	S  standard       small gaps, standard computation
//	R  representative larger gaps, still representative
//	P, Q, E, ...      provisional or estimated; excluded from gridding
//
// Only {C, S, R} rows are interpolated. The value 9999 is the NCEI
// no-data sentinel and is likewise excluded.
//
// # Regions
//
// Interpolation runs once per (variable, region) pair over four regions
// (CONUS, Alaska, Hawaii, Puerto Rico), each with its own equal-area
// projection, bounding box, clip boundary, and optional DEM. Region
// definitions live in the regions registry and are injected into each run;
// there is no process-wide region state.
package domain
