// Package control implements the TCP command session against a Switcher
// Power Plug device.
//
// Every operation is a short-lived session on port 9957: connect, log in to
// obtain a session id, send one signed command packet, read the reply, and
// disconnect. Devices accept commands without acknowledging them reliably,
// so on/off commands are verified by polling the device state afterwards
// (see confirm.go).
//
// # Session Flow
//
//  1. TCP connect to <device-ip>:9957
//  2. Send a signed login packet carrying the current unix timestamp
//  3. Extract the 4-byte session id from the login response
//  4. Build, sign and send the command packet for the operation
//  5. Read and decode the device's reply (status and rename only; plain
//     on/off commands get no reply and are verified by polling)
//
// # Usage Example
//
//	ctrl := control.NewController("192.168.1.42", "9b5a2c")
//	status, err := ctrl.GetStatus(context.Background())
//	if err != nil {
//	    log.Fatal(control.GetShortErrorMessage(err))
//	}
//	fmt.Printf("plug is %s drawing %dW\n", status.State, status.PowerConsumption)
//
// Errors carry a category (network, login, device, validation, confirmation)
// so the CLI can print targeted troubleshooting hints; see errors.go.
package control
