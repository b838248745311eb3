// Package adversarial measures how stable a trust score is under common
// content degradations.
//
// A fixed catalog of seven attacks (JPEG recompression at three quality
// levels, Gaussian noise, blur, resolution loss, and cropping) is
// replayed over independent copies of the input frames; each attack
// records the re-scored value and its absolute degradation from the
// undegraded baseline. Attack failures are isolated per catalog entry.
package adversarial
