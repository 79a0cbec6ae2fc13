package driven

import (
	port "github.com/alorle/iptv-collector/internal/port/driven"
)

var (
	_ port.ReachabilityChecker = (*HTTPReachabilityChecker)(nil)
	_ port.MediaSource         = (*HTTPMediaSource)(nil)
	_ port.StreamAnalyzer      = (*FFProbeAnalyzer)(nil)
	_ port.AnalysisSession     = (*ffprobeSession)(nil)
	_ port.PlaylistFetcher     = (*HTTPPlaylistFetcher)(nil)
	_ port.PlaylistCache       = (*PlaylistCacheBoltDB)(nil)
	_ port.CatalogWriter       = (*CatalogFileWriter)(nil)
)
