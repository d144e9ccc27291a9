package zone

// ExtractTrack pulls title/artist/album display text out of a now-playing
// record.
//
// The three shapes are tried richest-first: three-line (title/artist/album),
// then two-line (title/artist), then one-line (title). First match wins;
// there is no merging across shapes. A nil record or one with no shape at
// all yields empty strings for all three fields.
func ExtractTrack(np *NowPlaying) (title, artist, album string) {
	if np == nil {
		return "", "", ""
	}

	switch {
	case np.ThreeLine != nil:
		return np.ThreeLine.Line1, np.ThreeLine.Line2, np.ThreeLine.Line3
	case np.TwoLine != nil:
		return np.TwoLine.Line1, np.TwoLine.Line2, ""
	case np.OneLine != nil:
		return np.OneLine.Line1, "", ""
	default:
		return "", "", ""
	}
}
