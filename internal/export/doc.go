// Package export renders a project timeline into a movie file with ffmpeg.
//
// The timeline is written as an ffconcat list (trimmed video clips and timed
// stills), optionally mixed with one background audio track, and encoded to
// H.264/AAC. Progress is parsed from ffmpeg's -progress output. A cancelled
// export removes its partial output file.
package export
