/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package artifacts copies the output files of a run to Google Cloud
// Storage (gs://) or Amazon S3 (s3://).
package artifacts
