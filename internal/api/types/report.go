package types

// ProjectReport is the success body of /get_kicad_project_bom_and_ports.
type ProjectReport struct {
	Bom   []BomGroup `json:"bom"`
	Ports Ports      `json:"ports"`
}

// BomGroup is one BOM line: parts sharing value, footprint and DNP flag.
type BomGroup struct {
	DNP         bool     `json:"DNP"`
	Datasheet   string   `json:"Datasheet"`
	Description string   `json:"Description"`
	Footprint   string   `json:"Footprint"`
	Name        string   `json:"Name"`
	Price       float64  `json:"Price"`
	Quantity    int      `json:"Quantity"`
	Designators []string `json:"Designators"`
}

// Ports of the root schematic: hierarchical labels plus global power symbols.
type Ports struct {
	HierarchyLabels []string `json:"hierarchy_labels"`
	GlobalPwrPorts  []string `json:"global_pwr_ports"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
