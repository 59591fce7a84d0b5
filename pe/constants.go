package pe

import "strconv"

// PE file format magic values.
const (
	// dosSignature is the two-byte DOS stub marker ("MZ").
	dosSignature = "MZ"

	// peSignature is the four-byte NT header marker ("PE\0\0").
	peSignature = "PE\x00\x00"

	// peOffsetPointer is the file offset of the u32 pointing at the PE
	// signature (e_lfanew in the DOS header).
	peOffsetPointer = 0x3C

	// fileHeaderSize is the fixed size of the COFF file header in bytes.
	fileHeaderSize = 20

	// dataDirectorySize is the size of one data-directory entry in bytes.
	dataDirectorySize = 8
)

// Optional-header magic values identify the image variant and the width of
// its pointer-sized fields.
const (
	MagicPE32     ImageMagic = 0x10B // 32-bit address fields
	MagicROM      ImageMagic = 0x107 // ROM image, 32-bit address fields
	MagicPE32Plus ImageMagic = 0x20B // 64-bit address fields
)

// Target machine codes from the IMAGE_FILE_MACHINE table. The set is closed:
// a code outside it fails decoding rather than passing through.
const (
	MachineUnknown     MachineType = 0x0    // Unmanaged PE only
	MachineAlpha       MachineType = 0x184  // Alpha AXP, 32-bit
	MachineAlpha64     MachineType = 0x284  // Alpha AXP, 64-bit (also AXP64)
	MachineAM33        MachineType = 0x1D3  // Matsushita AM33
	MachineAmd64       MachineType = 0x8664 // x64
	MachineArm         MachineType = 0x1C0  // ARM little endian
	MachineArm64       MachineType = 0xAA64 // ARM64 little endian
	MachineArmNT       MachineType = 0x1C4  // ARM Thumb-2 little endian
	MachineEBC         MachineType = 0xEBC  // EFI byte code
	MachineI386        MachineType = 0x14C  // Intel 386 and compatible
	MachineIA64        MachineType = 0x200  // Intel Itanium
	MachineLoongArch32 MachineType = 0x6232 // LoongArch 32-bit
	MachineLoongArch64 MachineType = 0x6264 // LoongArch 64-bit
	MachineM32R        MachineType = 0x9041 // Mitsubishi M32R little endian
	MachineMIPS16      MachineType = 0x266  // MIPS16
	MachineMIPSFPU     MachineType = 0x366  // MIPS with FPU
	MachineMIPSFPU16   MachineType = 0x466  // MIPS16 with FPU
	MachinePowerPC     MachineType = 0x1F0  // PowerPC little endian
	MachinePowerPCFP   MachineType = 0x1F1  // PowerPC with floating point
	MachineR4000       MachineType = 0x166  // MIPS little endian
	MachineRISCV32     MachineType = 0x5032 // RISC-V 32-bit
	MachineRISCV64     MachineType = 0x5064 // RISC-V 64-bit
	MachineRISCV128    MachineType = 0x5128 // RISC-V 128-bit
	MachineSH3         MachineType = 0x1A2  // Hitachi SH3
	MachineSH3DSP      MachineType = 0x1A3  // Hitachi SH3 DSP
	MachineSH4         MachineType = 0x1A6  // Hitachi SH4
	MachineSH5         MachineType = 0x1A8  // Hitachi SH5
	MachineThumb       MachineType = 0x1C2  // Thumb
	MachineWCEMIPSv2   MachineType = 0x169  // MIPS WCE v2 little endian
)

// machineNames is the closed machine-type table. Membership decides whether
// a raw code decodes at all.
var machineNames = map[MachineType]string{
	MachineUnknown:     "Unknown",
	MachineAlpha:       "Alpha",
	MachineAlpha64:     "Alpha64",
	MachineAM33:        "AM33",
	MachineAmd64:       "Amd64",
	MachineArm:         "Arm",
	MachineArm64:       "Arm64",
	MachineArmNT:       "ArmNT",
	MachineEBC:         "EBC",
	MachineI386:        "I386",
	MachineIA64:        "IA64",
	MachineLoongArch32: "LoongArch32",
	MachineLoongArch64: "LoongArch64",
	MachineM32R:        "M32R",
	MachineMIPS16:      "MIPS16",
	MachineMIPSFPU:     "MIPSFPU",
	MachineMIPSFPU16:   "MIPSFPU16",
	MachinePowerPC:     "PowerPC",
	MachinePowerPCFP:   "PowerPCFP",
	MachineR4000:       "R4000",
	MachineRISCV32:     "RISCV32",
	MachineRISCV64:     "RISCV64",
	MachineRISCV128:    "RISCV128",
	MachineSH3:         "SH3",
	MachineSH3DSP:      "SH3DSP",
	MachineSH4:         "SH4",
	MachineSH5:         "SH5",
	MachineThumb:       "Thumb",
	MachineWCEMIPSv2:   "WCEMIPSv2",
}

// COFF characteristics bit masks (IMAGE_FILE_* flags). Bits outside this
// vocabulary are masked out during decode, never surfaced.
const (
	CoffRelocsStripped       CoffFlag = 0x0001 // Relocation info stripped
	CoffExecutableImage      CoffFlag = 0x0002 // File is runnable
	CoffLineNumsStripped     CoffFlag = 0x0004 // COFF line numbers stripped
	CoffLocalSymsStripped    CoffFlag = 0x0008 // COFF local symbols stripped
	CoffAggressiveWSTrim     CoffFlag = 0x0010 // Aggressively trim working set
	CoffLargeAddressAware    CoffFlag = 0x0020 // Can handle >2GB addresses
	CoffBytesReversedLo      CoffFlag = 0x0080 // Little endian (deprecated)
	CoffMachine32Bit         CoffFlag = 0x0100 // 32-bit word machine
	CoffDebugStripped        CoffFlag = 0x0200 // Debug info stripped
	CoffRemovableRunFromSwap CoffFlag = 0x0400 // Copy to swap if on removable media
	CoffNetRunFromSwap       CoffFlag = 0x0800 // Copy to swap if on network media
	CoffSystem               CoffFlag = 0x1000 // System file, not a user program
	CoffDLL                  CoffFlag = 0x2000 // Dynamic-link library
	CoffUPSystemOnly         CoffFlag = 0x4000 // Uniprocessor machine only
	CoffBytesReversedHi      CoffFlag = 0x8000 // Big endian (deprecated)
)

// coffFlagOrder fixes the bit-test order for decoding and rendering.
var coffFlagOrder = []CoffFlag{
	CoffRelocsStripped,
	CoffExecutableImage,
	CoffLineNumsStripped,
	CoffLocalSymsStripped,
	CoffAggressiveWSTrim,
	CoffLargeAddressAware,
	CoffBytesReversedLo,
	CoffMachine32Bit,
	CoffDebugStripped,
	CoffRemovableRunFromSwap,
	CoffNetRunFromSwap,
	CoffSystem,
	CoffDLL,
	CoffUPSystemOnly,
	CoffBytesReversedHi,
}

var coffFlagNames = map[CoffFlag]string{
	CoffRelocsStripped:       "RelocsStripped",
	CoffExecutableImage:      "ExecutableImage",
	CoffLineNumsStripped:     "LineNumsStripped",
	CoffLocalSymsStripped:    "LocalSymsStripped",
	CoffAggressiveWSTrim:     "AggressiveWSTrim",
	CoffLargeAddressAware:    "LargeAddressAware",
	CoffBytesReversedLo:      "BytesReversedLo",
	CoffMachine32Bit:         "Machine32Bit",
	CoffDebugStripped:        "DebugStripped",
	CoffRemovableRunFromSwap: "RemovableRunFromSwap",
	CoffNetRunFromSwap:       "NetRunFromSwap",
	CoffSystem:               "System",
	CoffDLL:                  "DLL",
	CoffUPSystemOnly:         "UPSystemOnly",
	CoffBytesReversedHi:      "BytesReversedHi",
}

// Subsystem codes from the IMAGE_SUBSYSTEM table. Closed set: an unlisted
// code fails decoding.
const (
	SubsystemUnknown              Subsystem = 0  // Unknown subsystem
	SubsystemNative               Subsystem = 1  // No subsystem required (drivers)
	SubsystemWindowsGUI           Subsystem = 2  // Windows graphical UI
	SubsystemWindowsCUI           Subsystem = 3  // Windows character UI (console)
	SubsystemOS2CUI               Subsystem = 5  // OS/2 character UI
	SubsystemPosixCUI             Subsystem = 7  // POSIX character UI
	SubsystemNativeWindows        Subsystem = 8  // Native Win9x driver
	SubsystemWindowsCEGUI         Subsystem = 9  // Windows CE graphical UI
	SubsystemEFIApplication       Subsystem = 10 // EFI application
	SubsystemEFIBootServiceDriver Subsystem = 11 // EFI boot service driver
	SubsystemEFIRuntimeDriver     Subsystem = 12 // EFI runtime driver
	SubsystemEFIROM               Subsystem = 13 // EFI ROM image
	SubsystemXbox                 Subsystem = 14 // Xbox
)

var subsystemNames = map[Subsystem]string{
	SubsystemUnknown:              "Unknown",
	SubsystemNative:               "Native",
	SubsystemWindowsGUI:           "WindowsGUI",
	SubsystemWindowsCUI:           "WindowsCUI",
	SubsystemOS2CUI:               "OS2CUI",
	SubsystemPosixCUI:             "PosixCUI",
	SubsystemNativeWindows:        "NativeWindows",
	SubsystemWindowsCEGUI:         "WindowsCEGUI",
	SubsystemEFIApplication:       "EFIApplication",
	SubsystemEFIBootServiceDriver: "EFIBootServiceDriver",
	SubsystemEFIRuntimeDriver:     "EFIRuntimeDriver",
	SubsystemEFIROM:               "EFIROM",
	SubsystemXbox:                 "Xbox",
}

// DLL characteristics bit masks (IMAGE_DLLCHARACTERISTICS_* flags). Same
// masked-accumulation policy as the COFF flags: unknown bits are dropped.
const (
	DllDynamicBase         DllFlag = 0x0040 // Can be relocated at load time (ASLR)
	DllForceIntegrity      DllFlag = 0x0080 // Code integrity checks enforced
	DllNXCompat            DllFlag = 0x0100 // NX compatible (DEP)
	DllNoIsolation         DllFlag = 0x0200 // Isolation aware, but do not isolate
	DllNoSEH               DllFlag = 0x0400 // No structured exception handling
	DllNoBind              DllFlag = 0x0800 // Do not bind the image
	DllWDMDriver           DllFlag = 0x2000 // WDM driver
	DllTerminalServerAware DllFlag = 0x8000 // Terminal Server aware
)

var dllFlagOrder = []DllFlag{
	DllDynamicBase,
	DllForceIntegrity,
	DllNXCompat,
	DllNoIsolation,
	DllNoSEH,
	DllNoBind,
	DllWDMDriver,
	DllTerminalServerAware,
}

var dllFlagNames = map[DllFlag]string{
	DllDynamicBase:         "DynamicBase",
	DllForceIntegrity:      "ForceIntegrity",
	DllNXCompat:            "NXCompat",
	DllNoIsolation:         "NoIsolation",
	DllNoSEH:               "NoSEH",
	DllNoBind:              "NoBind",
	DllWDMDriver:           "WDMDriver",
	DllTerminalServerAware: "TerminalServerAware",
}

// Data-directory table indices. The decoder reads however many entries the
// header declares; these names exist for callers and the dump renderer.
const (
	DirectoryExport         = 0  // Export table
	DirectoryImport         = 1  // Import table
	DirectoryResource       = 2  // Resource table
	DirectoryException      = 3  // Exception table
	DirectoryCertificate    = 4  // Attribute certificate table
	DirectoryBaseRelocation = 5  // Base relocation table
	DirectoryDebug          = 6  // Debug data
	DirectoryArchitecture   = 7  // Reserved, must be zero
	DirectoryGlobalPtr      = 8  // Global pointer register RVA
	DirectoryTLS            = 9  // Thread local storage table
	DirectoryLoadConfig     = 10 // Load configuration table
	DirectoryBoundImport    = 11 // Bound import table
	DirectoryIAT            = 12 // Import address table
	DirectoryDelayImport    = 13 // Delay import descriptor
	DirectoryCLR            = 14 // CLR runtime header
	DirectoryReserved       = 15 // Reserved, must be zero
)

var directoryNames = [...]string{
	DirectoryExport:         "Export",
	DirectoryImport:         "Import",
	DirectoryResource:       "Resource",
	DirectoryException:      "Exception",
	DirectoryCertificate:    "Certificate",
	DirectoryBaseRelocation: "Base Relocation",
	DirectoryDebug:          "Debug",
	DirectoryArchitecture:   "Architecture",
	DirectoryGlobalPtr:      "Global Ptr",
	DirectoryTLS:            "TLS",
	DirectoryLoadConfig:     "Load Config",
	DirectoryBoundImport:    "Bound Import",
	DirectoryIAT:            "IAT",
	DirectoryDelayImport:    "Delay Import",
	DirectoryCLR:            "CLR",
	DirectoryReserved:       "Reserved",
}

// DirectoryName returns the conventional name of a data-directory index, or
// "Directory N" for indices past the published table.
func DirectoryName(index int) string {
	if index >= 0 && index < len(directoryNames) {
		return directoryNames[index]
	}
	return "Directory " + strconv.Itoa(index)
}
