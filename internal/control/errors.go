package control

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"syscall"
)

// Error types for device control operations

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeConnect indicates the TCP connection to the device failed
	ErrTypeConnect ErrorType = iota
	// ErrTypeTimeout indicates a connect or read deadline expired
	ErrTypeTimeout
	// ErrTypeLogin indicates the login handshake failed (short or missing response)
	ErrTypeLogin
	// ErrTypeNoResponse indicates the device returned nothing for a command
	ErrTypeNoResponse
	// ErrTypeInvalidDevice indicates the device answered but not like a Power Plug
	ErrTypeInvalidDevice
	// ErrTypeValidation indicates a bad input rejected before any network I/O
	ErrTypeValidation
	// ErrTypeNotConfirmed indicates a command was sent but the device never
	// reported the requested state
	ErrTypeNotConfirmed
	// ErrTypeUnknown indicates an unexpected error
	ErrTypeUnknown
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeConnect:
		return "Connection Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeLogin:
		return "Login Error"
	case ErrTypeNoResponse:
		return "No Response"
	case ErrTypeInvalidDevice:
		return "Invalid Device"
	case ErrTypeValidation:
		return "Validation Error"
	case ErrTypeNotConfirmed:
		return "Command Not Confirmed"
	case ErrTypeUnknown:
		return "Unknown Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// DeviceError represents an error that occurred during a device session
type DeviceError struct {
	Type      ErrorType // Category of error
	Message   string    // Human-readable error message
	Err       error     // Underlying error (if any)
	DeviceIP  string    // Device IP address (for context)
	Retryable bool      // Whether the error is retryable
}

// Error implements the error interface
func (e *DeviceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *DeviceError) Unwrap() error {
	return e.Err
}

// NewConnectError classifies a dial failure. Timeouts get their own
// category because the fix (device powered off, wrong IP) differs from a
// refusal (wrong port, non-Switcher host).
func NewConnectError(deviceIP string, err error) *DeviceError {
	if os.IsTimeout(err) {
		return &DeviceError{
			Type:      ErrTypeTimeout,
			Message:   "connection attempt timed out",
			Err:       err,
			DeviceIP:  deviceIP,
			Retryable: true,
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ECONNREFUSED) {
		return &DeviceError{
			Type:      ErrTypeConnect,
			Message:   "device refused connection",
			Err:       err,
			DeviceIP:  deviceIP,
			Retryable: true,
		}
	}

	return &DeviceError{
		Type:      ErrTypeConnect,
		Message:   "failed to connect to device",
		Err:       err,
		DeviceIP:  deviceIP,
		Retryable: true,
	}
}

// NewLoginError creates a login handshake error
func NewLoginError(deviceIP, message string, err error) *DeviceError {
	return &DeviceError{
		Type:      ErrTypeLogin,
		Message:   message,
		Err:       err,
		DeviceIP:  deviceIP,
		Retryable: true,
	}
}

// NewNoResponseError creates an error for a command the device ignored
func NewNoResponseError(deviceIP, message string) *DeviceError {
	return &DeviceError{
		Type:      ErrTypeNoResponse,
		Message:   message,
		DeviceIP:  deviceIP,
		Retryable: true,
	}
}

// NewInvalidDeviceError creates an error for a response too short or
// malformed to have come from a Power Plug
func NewInvalidDeviceError(deviceIP, message string) *DeviceError {
	return &DeviceError{
		Type:      ErrTypeInvalidDevice,
		Message:   message,
		DeviceIP:  deviceIP,
		Retryable: false,
	}
}

// NewValidationError creates an input validation error
func NewValidationError(message string, err error) *DeviceError {
	return &DeviceError{
		Type:      ErrTypeValidation,
		Message:   message,
		Err:       err,
		Retryable: false,
	}
}

// NewNotConfirmedError creates an error for a command that was delivered
// but never reflected in the device's reported state
func NewNotConfirmedError(deviceIP, message string) *DeviceError {
	return &DeviceError{
		Type:      ErrTypeNotConfirmed,
		Message:   message,
		DeviceIP:  deviceIP,
		Retryable: true,
	}
}

// IsConnectError checks if an error is a connection-level error (including timeout)
func IsConnectError(err error) bool {
	var devErr *DeviceError
	if errors.As(err, &devErr) {
		return devErr.Type == ErrTypeConnect || devErr.Type == ErrTypeTimeout
	}
	return false
}

// IsLoginError checks if an error is a login handshake error
func IsLoginError(err error) bool {
	var devErr *DeviceError
	if errors.As(err, &devErr) {
		return devErr.Type == ErrTypeLogin
	}
	return false
}

// IsValidationError checks if an error is an input validation error
func IsValidationError(err error) bool {
	var devErr *DeviceError
	if errors.As(err, &devErr) {
		return devErr.Type == ErrTypeValidation
	}
	return false
}

// IsNotConfirmedError checks if an error means the command reached the
// device but the state change was never observed
func IsNotConfirmedError(err error) bool {
	var devErr *DeviceError
	if errors.As(err, &devErr) {
		return devErr.Type == ErrTypeNotConfirmed
	}
	return false
}

// IsRetryable checks if an error should be retried
func IsRetryable(err error) bool {
	var devErr *DeviceError
	if errors.As(err, &devErr) {
		return devErr.Retryable
	}
	return false
}

// GetTroubleshootingHint returns user-friendly troubleshooting advice for an error
func GetTroubleshootingHint(err error) string {
	var devErr *DeviceError
	if !errors.As(err, &devErr) {
		return "An unexpected error occurred. Please try again."
	}

	switch devErr.Type {
	case ErrTypeTimeout:
		return strings.Join([]string{
			"The device did not respond in time.",
			"Troubleshooting:",
			"  • Check that the plug is powered and its LED is lit",
			"  • Verify the IP address with 'switcherctl discover'",
			"  • Make sure your computer is on the same network as the plug",
		}, "\n")

	case ErrTypeConnect:
		return strings.Join([]string{
			"Could not open a control connection to the device.",
			"Troubleshooting:",
			"  • Verify the IP address with 'switcherctl discover'",
			"  • The plug only accepts connections on port 9957",
			"  • Try power-cycling the plug",
		}, "\n")

	case ErrTypeLogin:
		return strings.Join([]string{
			"The device rejected the login handshake.",
			"Troubleshooting:",
			"  • Make sure the address belongs to a Switcher Power Plug",
			"  • Try power-cycling the plug",
		}, "\n")

	case ErrTypeNoResponse:
		return strings.Join([]string{
			"The device accepted the connection but sent no reply.",
			"Troubleshooting:",
			"  • Try the command again",
			"  • Power-cycle the plug if this persists",
		}, "\n")

	case ErrTypeInvalidDevice:
		return strings.Join([]string{
			"The host answered, but not like a Switcher Power Plug.",
			"Troubleshooting:",
			"  • Verify the IP address with 'switcherctl discover'",
			"  • Other Switcher models are not supported by this tool",
		}, "\n")

	case ErrTypeNotConfirmed:
		return strings.Join([]string{
			"The command was sent, but the plug never reported the new state.",
			"Troubleshooting:",
			"  • Check the plug's physical state and retry",
			"  • Some firmware revisions apply commands with a delay",
		}, "\n")

	case ErrTypeValidation:
		return "The command input is invalid. Check the error message for details."

	default:
		return "An error occurred. Please check the error message for details."
	}
}

// GetShortErrorMessage returns a concise, user-friendly error message
func GetShortErrorMessage(err error) string {
	var devErr *DeviceError
	if !errors.As(err, &devErr) {
		return err.Error()
	}

	switch devErr.Type {
	case ErrTypeTimeout:
		return "Device not responding (timeout)"
	case ErrTypeConnect:
		return "Cannot connect to device - check IP and network"
	case ErrTypeLogin:
		return "Login handshake failed - is this a Switcher plug?"
	case ErrTypeNoResponse:
		return "Device sent no response"
	case ErrTypeInvalidDevice:
		return "Not a recognized Switcher Power Plug"
	case ErrTypeNotConfirmed:
		return "Command sent but state change not confirmed"
	case ErrTypeValidation:
		return devErr.Message
	default:
		return devErr.Message
	}
}
