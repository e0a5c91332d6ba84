package validation

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/input-output-hk/catalyst-forge-libs/aws/transfer/errors"
)

func TestValidateBucket_Names(t *testing.T) {
	tests := []struct {
		name      string
		bucket    string
		wantError bool
		errMsg    string
	}{
		// Valid bucket names
		{"valid_simple", "my-bucket", false, ""},
		{"valid_with_numbers", "my-bucket123", false, ""},
		{"valid_with_dots", "my.bucket", false, ""},
		{"valid_with_hyphens", "my-bucket-name", false, ""},
		{"valid_min_length", "abc", false, ""},
		{"valid_max_length", strings.Repeat("a", 63), false, ""},
		{"valid_starts_with_number", "1bucket", false, ""},

		// Invalid bucket names
		{"empty", "", true, "bucket name cannot be empty"},
		{"too_short", "ab", true, "bucket name must be between 3 and 63 characters long"},
		{
			"too_long",
			strings.Repeat("a", 64),
			true,
			"bucket name must be between 3 and 63 characters long",
		},
		{
			"starts_with_hyphen",
			"-bucket",
			true,
			"bucket name cannot start or end with a hyphen or dot",
		},
		{
			"ends_with_hyphen",
			"bucket-",
			true,
			"bucket name cannot start or end with a hyphen or dot",
		},
		{
			"starts_with_dot",
			".bucket",
			true,
			"bucket name cannot start or end with a hyphen or dot",
		},
		{"ends_with_dot", "bucket.", true, "bucket name cannot start or end with a hyphen or dot"},
		{
			"uppercase_letters",
			"MyBucket",
			true,
			"bucket name can only contain lowercase letters, numbers, dots, and hyphens",
		},
		{
			"underscore",
			"my_bucket",
			true,
			"bucket name can only contain lowercase letters, numbers, dots, and hyphens",
		},
		{
			"adjacent_dots",
			"my..bucket",
			true,
			"bucket name cannot contain two adjacent periods or hyphens",
		},
		{
			"adjacent_hyphens",
			"my--bucket",
			true,
			"bucket name cannot contain two adjacent periods or hyphens",
		},
		{
			"ip_address",
			"192.168.1.1",
			true,
			"bucket name cannot be formatted as an IP address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBucket(tt.bucket)
			if tt.wantError {
				if err == nil {
					t.Fatalf("ValidateBucket(%q) expected error, got nil", tt.bucket)
				}
				if !stderrors.Is(err, errors.ErrInvalidBucketName) {
					t.Errorf("ValidateBucket(%q) error = %v, want ErrInvalidBucketName", tt.bucket, err)
				}
				if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("ValidateBucket(%q) error = %q, want substring %q", tt.bucket, err.Error(), tt.errMsg)
				}
			} else if err != nil {
				t.Errorf("ValidateBucket(%q) unexpected error: %v", tt.bucket, err)
			}
		})
	}
}

func TestValidateBucket_ARNs(t *testing.T) {
	tests := []struct {
		name    string
		bucket  string
		wantErr error
		errMsg  string
	}{
		{
			"access_point_arn_supported",
			"arn:aws:s3:us-west-2:123456789012:accesspoint/myaccesspoint",
			nil,
			"",
		},
		{
			"object_lambda_arn_rejected",
			"arn:aws:s3-object-lambda:us-west-2:123456789012:accesspoint/mybanner",
			errors.ErrUnsupportedResource,
			"Object Lambda",
		},
		{
			"multi_region_access_point_rejected",
			"arn:aws:s3::123456789012:accesspoint/mfzwi23gnjvgw.mrap",
			errors.ErrUnsupportedResource,
			"multi-region access point",
		},
		{
			"malformed_arn_rejected",
			"arn:not-a-real-arn",
			errors.ErrInvalidBucketName,
			"not a valid ARN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBucket(tt.bucket)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("ValidateBucket(%q) unexpected error: %v", tt.bucket, err)
				}
				return
			}
			if err == nil {
				t.Fatalf("ValidateBucket(%q) expected error, got nil", tt.bucket)
			}
			if !stderrors.Is(err, tt.wantErr) {
				t.Errorf("ValidateBucket(%q) error = %v, want %v", tt.bucket, err, tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("ValidateBucket(%q) error = %q, want substring %q", tt.bucket, err.Error(), tt.errMsg)
			}
		})
	}
}

func TestValidateObjectKey(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		wantError bool
		errMsg    string
	}{
		// Valid keys
		{"valid_simple", "my-file.txt", false, ""},
		{"valid_with_path", "folder/subfolder/file.txt", false, ""},
		{"valid_with_spaces", "my file.txt", false, ""},
		{"valid_unicode", "файл.txt", false, ""},
		{"valid_max_length", strings.Repeat("a", 1024), false, ""},

		// Invalid keys
		{"empty", "", true, "object key cannot be empty"},
		{"path_traversal_dots", "../etc/passwd", true, "path traversal"},
		{"path_traversal_embedded", "folder/../../etc/passwd", true, "path traversal"},
		{"absolute_path", "/etc/passwd", true, "path traversal"},
		{"too_long", strings.Repeat("a", 1025), true, "cannot exceed 1024 characters"},
		{"control_character", "file\x00name", true, "control characters"},
		{"newline", "file\nname", true, "control characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateObjectKey(tt.key)
			if tt.wantError {
				if err == nil {
					t.Fatalf("ValidateObjectKey(%q) expected error, got nil", tt.key)
				}
				if !stderrors.Is(err, errors.ErrInvalidObjectKey) {
					t.Errorf("ValidateObjectKey(%q) error = %v, want ErrInvalidObjectKey", tt.key, err)
				}
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("ValidateObjectKey(%q) error = %q, want substring %q", tt.key, err.Error(), tt.errMsg)
				}
			} else if err != nil {
				t.Errorf("ValidateObjectKey(%q) unexpected error: %v", tt.key, err)
			}
		})
	}
}
