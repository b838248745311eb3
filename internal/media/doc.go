// Package media defines the frame and audio representations shared by the
// signal providers, the quality assessor, and the robustness tester, plus
// helpers for deterministic frame sampling and file ingest.
//
// Frame and audio extraction from container formats (MP4, MKV, ...) is an
// external collaborator's job; this package only ingests still images and
// PCM WAV files, which stand in for the extractor at the boundary.
package media
