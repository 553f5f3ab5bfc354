package api

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "cyclelogin.v1.CycleLogin"

// Method names. Public methods need no credentials; the rest require a dev
// token in the AccessTokenHeaderName metadata entry.
const (
	MethodExchangeDevPIN  = "ExchangeDevPIN"
	MethodValidate        = "Validate"
	MethodIncrementCount  = "IncrementVisitCount"
	MethodGetCount        = "GetVisitCount"
	MethodRecordVisit     = "RecordVisit"
	MethodAmendDuration   = "AmendLastDuration"
	MethodListUsers       = "ListUsers"
	MethodCreateUser      = "CreateUser"
	MethodDeleteUser      = "DeleteUser"
	MethodUpdateLicense   = "UpdateLicense"
	MethodBulkAddLicense  = "BulkAddLicense"
	MethodListVisits      = "ListVisits"
	MethodVisitsByUser    = "VisitsByUser"
	MethodResetVisitCount = "ResetVisitCount"
	MethodPing            = "Ping"
)

// FullMethod returns "/<service>/<method>".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

var privileged = map[string]bool{
	MethodListUsers:       true,
	MethodCreateUser:      true,
	MethodDeleteUser:      true,
	MethodUpdateLicense:   true,
	MethodBulkAddLicense:  true,
	MethodListVisits:      true,
	MethodVisitsByUser:    true,
	MethodResetVisitCount: true,
}

// IsPrivileged reports whether fullMethod needs a dev token.
func IsPrivileged(fullMethod string) bool {
	for m := range privileged {
		if FullMethod(m) == fullMethod {
			return true
		}
	}
	return false
}
