package memory

import "fmt"

// AddressOutOfRangeError is the fatal AddressOutOfRange: a memory access
// whose address is >= 2^ADDRESS_SIZE. Fatal — the caller halts and reports
// stage and PC context around it.
type AddressOutOfRangeError struct {
	Address uint32
	Limit   uint32
}

func (e *AddressOutOfRangeError) Error() string {
	return fmt.Sprintf("address 0x%X is out of range (limit 0x%X)", e.Address, e.Limit)
}
